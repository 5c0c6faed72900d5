package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mdazam1942/cti-stix-validator/pkg/console"
	"github.com/mdazam1942/cti-stix-validator/pkg/validator"
)

// watchAndValidate validates the inputs once, then keeps watching their
// directories and revalidates files as they change. It returns when
// interrupted; the boolean reports whether the last run was clean.
func watchAndValidate(v *validator.Validator, paths []string, opts Options) (bool, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dirs, err := watchDirs(paths, opts.Recursive)
	if err != nil {
		return false, err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return false, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	runOnce := func() bool {
		files, err := discoverFiles(paths, opts.Recursive)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			return false
		}
		results := validateFiles(v, files, opts)
		allValid := true
		for _, fr := range results {
			printFileResult(fr, opts)
			if !fr.valid() {
				allValid = false
			}
		}
		if len(results) > 1 && !opts.Quiet {
			fmt.Println(console.RenderSummary(buildSummary(results)))
		}
		return allValid
	}

	lastValid := runOnce()
	fmt.Println(console.FormatInfoMessage("Watching for file changes. Press Ctrl+C to stop."))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	const debounceDelay = 300 * time.Millisecond
	var debounceTimer *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return lastValid, fmt.Errorf("watcher channel closed")
			}
			if !hasInputExt(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if opts.Validator.Verbose {
				fmt.Println(console.FormatVerboseMessage(fmt.Sprintf("detected change: %s (%s)", event.Name, event.Op)))
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			lastValid = runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return lastValid, fmt.Errorf("watcher error channel closed")
			}
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("watcher error: %v", err)))

		case <-sigChan:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return lastValid, nil
		}
	}
}

// watchDirs resolves the set of directories to watch: each directory input
// (plus its subdirectories when recursive) and the parent of each file input.
func watchDirs(paths []string, recursive bool) ([]string, error) {
	seen := make(map[string]struct{})
	var dirs []string

	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("input path: %w", err)
		}
		if !info.IsDir() {
			add(filepath.Dir(path))
			continue
		}
		if !recursive {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(entry string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				add(entry)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return dirs, nil
}
