package validator

// ReservedProperties are names reserved for future STIX revisions; the core
// schema forbids them on every object and the rewriter names the full set.
var ReservedProperties = []string{
	"confidence",
	"severity",
	"action",
	"usernames",
	"phone_numbers",
	"addresses",
}

// SDOTypes are the STIX Domain Object types relationships may reference.
var SDOTypes = []string{
	"attack-pattern",
	"campaign",
	"course-of-action",
	"identity",
	"indicator",
	"intrusion-set",
	"malware",
	"observed-data",
	"report",
	"threat-actor",
	"tool",
	"vulnerability",
}

// MarkingDefinitionTypes are the approved definition_type values.
var MarkingDefinitionTypes = []string{"statement", "tlp"}

// Open vocabularies checked by the approved-values SHOULD checks, keyed by
// the check name that guards them.
var (
	IdentityClassVocab = []string{
		"individual", "group", "system", "organization", "class", "unknown",
	}

	IndicatorTypeVocab = []string{
		"anomalous-activity", "anonymization", "attribution", "benign",
		"compromised", "malicious-activity", "unknown",
	}

	MalwareTypeVocab = []string{
		"adware", "backdoor", "bot", "ddos", "dropper", "exploit-kit",
		"keylogger", "ransomware", "remote-access-trojan", "rootkit",
		"screen-capture", "spyware", "trojan", "virus", "worm", "unknown",
	}

	ReportTypeVocab = []string{
		"attack-pattern", "campaign", "identity", "indicator", "intrusion-set",
		"malware", "observed-data", "threat-actor", "threat-report", "tool",
		"vulnerability",
	}

	ThreatActorTypeVocab = []string{
		"activist", "competitor", "crime-syndicate", "criminal", "hacker",
		"insider-accidental", "insider-disgruntled", "nation-state",
		"sensationalist", "spy", "terrorist", "unknown",
	}

	ToolTypeVocab = []string{
		"denial-of-service", "exploitation", "information-gathering",
		"network-capture", "credential-exploitation", "remote-access",
		"vulnerability-scanning", "unknown",
	}
)

// vocabChecks maps an object type to the fields covered by an approved-values
// vocabulary and the check name that can disable each one.
var vocabChecks = map[string][]vocabCheck{
	"identity":     {{field: "identity_class", vocab: IdentityClassVocab, check: "identity-class"}},
	"indicator":    {{field: "indicator_types", vocab: IndicatorTypeVocab, check: "indicator-types"}},
	"malware":      {{field: "malware_types", vocab: MalwareTypeVocab, check: "malware-types"}},
	"report":       {{field: "report_types", vocab: ReportTypeVocab, check: "report-types"}},
	"threat-actor": {{field: "threat_actor_types", vocab: ThreatActorTypeVocab, check: "threat-actor-types"}},
	"tool":         {{field: "tool_types", vocab: ToolTypeVocab, check: "tool-types"}},
}

type vocabCheck struct {
	field string
	vocab []string
	check string
}

// CommonRelationships lists relationship types valid between any SDO pair.
var CommonRelationships = []string{"derived-from", "duplicate-of", "related-to"}

// RelationshipTypes maps source SDO type to the relationship types it may
// assert and the target types each one accepts. A deliberately partial table;
// the relationship-types check only warns for sources it knows about.
var RelationshipTypes = map[string]map[string][]string{
	"attack-pattern": {
		"targets": {"identity", "vulnerability"},
		"uses":    {"malware", "tool"},
	},
	"campaign": {
		"attributed-to": {"intrusion-set", "threat-actor"},
		"targets":       {"identity", "vulnerability"},
		"uses":          {"attack-pattern", "malware", "tool"},
	},
	"course-of-action": {
		"mitigates": {"attack-pattern", "malware", "tool", "vulnerability"},
	},
	"indicator": {
		"indicates": {
			"attack-pattern", "campaign", "intrusion-set", "malware",
			"threat-actor", "tool",
		},
	},
	"intrusion-set": {
		"attributed-to": {"threat-actor"},
		"targets":       {"identity", "vulnerability"},
		"uses":          {"attack-pattern", "malware", "tool"},
	},
	"malware": {
		"targets":    {"identity", "vulnerability"},
		"uses":       {"tool"},
		"variant-of": {"malware"},
	},
	"threat-actor": {
		"attributed-to": {"identity"},
		"impersonates":  {"identity"},
		"targets":       {"identity", "vulnerability"},
		"uses":          {"attack-pattern", "malware", "tool"},
	},
	"tool": {
		"targets": {"identity", "vulnerability"},
	},
}
