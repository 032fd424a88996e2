package curriculum

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change reports that a curriculum file was written, created or removed.
// Receivers reload the whole directory; the previous Curriculum is left
// untouched.
type Change struct {
	File string
	At   time.Time
}

// Watcher monitors a curriculum directory for definition changes using fsnotify.
type Watcher struct {
	Dir     string
	Changes <-chan Change // Read-only external channel

	changes chan Change // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a new watcher for the given curriculum directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching the directory for changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Editors often write a file several times in quick succession.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(file)
				}
				return
			}
			if !isCurriculumFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func (w *Watcher) emit(file string) {
	select {
	case w.changes <- Change{File: file, At: time.Now()}:
	default:
		// A reload is already queued; it will pick this change up too.
	}
}

func isCurriculumFile(name string) bool {
	base := filepath.Base(name)
	return base == ManifestFile || strings.HasSuffix(base, ".md")
}
