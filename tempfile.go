package glove

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

// tempFileSet is the "scoped temp-file handle" design note (§9): acquired
// at phase entry, guaranteed delete-on-consumer-success, and left on disk
// (handles released, paths kept) on any failure path, mirroring the
// teacher's MappedFile open/close pairing in model.go but for a set of
// numbered files instead of one mapped one.
type tempFileSet struct {
	prefix string
	paths  []string
}

// newTempFileSet prepares the "<head>_NNNN.bin" naming scheme of spec §3.
// When isDefaultPrefix is true (the caller left -overflow-file/-temp-file
// at its default), a short uuid suffix is appended so two pipeline runs
// sharing a working directory do not clobber each other's numbered temp
// files; an explicit override is used verbatim.
func newTempFileSet(prefix string, isDefaultPrefix bool) *tempFileSet {
	head := prefix
	if isDefaultPrefix {
		head = prefix + "-" + uuid.New().String()[:8]
	}
	return &tempFileSet{prefix: head}
}

// Create opens a new numbered temp file for writing.
func (t *tempFileSet) Create(index int) (*os.File, error) {
	path := fmt.Sprintf("%s_%04d.bin", t.prefix, index)
	f, err := os.Create(path)
	if err != nil {
		return nil, newError(IoError, "tempFileSet.Create", path, err)
	}
	t.paths = append(t.paths, path)
	return f, nil
}

// OpenReaders opens every produced temp file for reading, in creation
// order. Each is advised FADV_SEQUENTIAL via golang.org/x/sys/unix — the
// portable successor to the teacher's raw syscall.Mmap use in model.go —
// because the k-way merge (spec §4.2.5) reads each source front-to-back
// exactly once.
func (t *tempFileSet) OpenReaders() ([]*os.File, error) {
	files := make([]*os.File, 0, len(t.paths))
	for _, p := range t.paths {
		f, err := os.Open(p)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, newError(IoError, "tempFileSet.OpenReaders", p, err)
		}
		adviseSequential(f)
		files = append(files, f)
	}
	return files, nil
}

// Cleanup closes every handle in files; when success is true it also
// removes the backing paths (the consumer read them successfully). On
// failure, paths are left for the operator to inspect (spec §4.2.5, §7).
func (t *tempFileSet) Cleanup(files []*os.File, success bool) {
	for _, f := range files {
		f.Close()
	}
	if success {
		for _, p := range t.paths {
			os.Remove(p)
		}
	}
}

func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
