package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/scanseq-mcp/internal/imaging"
	"github.com/ironsheep/scanseq-mcp/internal/sequence"
	"github.com/ironsheep/scanseq-mcp/internal/transform"
)

func (s *Server) sequenceOptions() []sequence.Option {
	return append(s.cfg.SequenceOptions(),
		sequence.WithLoader(s.loader),
		sequence.WithLogger(s.log),
		sequence.WithMetrics(s.metrics),
	)
}

// folderKey is the name a folder sequence is stored under.
func folderKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// sequenceFor returns the sequence stored under ref. A ref that names a folder
// and is not open yet is opened and stored, so tools can be called on a folder
// without an explicit sequence_open.
func (s *Server) sequenceFor(ctx context.Context, ref string) (*sequence.Sequence, error) {
	if ref == "" {
		return nil, fmt.Errorf("sequence is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.sequences[ref]; ok {
		return seq, nil
	}
	key := folderKey(ref)
	if seq, ok := s.sequences[key]; ok {
		return seq, nil
	}
	if st, err := os.Stat(key); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("sequence %q is not open and is not a folder", ref)
	}

	seq, err := sequence.OpenFolder(ctx, key, s.sequenceOptions()...)
	if err != nil {
		return nil, err
	}
	s.sequences[key] = seq
	return seq, nil
}

// openSequence opens a folder, or an explicit path list stored under name,
// replacing any sequence already stored under the same key.
func (s *Server) openSequence(ctx context.Context, folder, name string, paths []string) (string, *sequence.Sequence, error) {
	var (
		key string
		seq *sequence.Sequence
		err error
	)
	switch {
	case folder != "" && len(paths) > 0:
		return "", nil, fmt.Errorf("give either folder or paths, not both")
	case folder != "":
		key = folderKey(folder)
		seq, err = sequence.OpenFolder(ctx, key, s.sequenceOptions()...)
	case len(paths) > 0:
		if name == "" {
			return "", nil, fmt.Errorf("name is required when opening a path list")
		}
		key = name
		seq, err = sequence.Open(ctx, paths, s.sequenceOptions()...)
	default:
		return "", nil, fmt.Errorf("folder or paths is required")
	}
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	old := s.sequences[key]
	s.sequences[key] = seq
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return key, seq, nil
}

// closeSequence closes and forgets the sequence stored under ref.
func (s *Server) closeSequence(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ref
	if _, ok := s.sequences[key]; !ok {
		key = folderKey(ref)
	}
	seq, ok := s.sequences[key]
	if !ok {
		return fmt.Errorf("sequence %q is not open", ref)
	}
	delete(s.sequences, key)
	return seq.Close()
}

// composite views seq as an image. white overrides the white level when positive.
func (s *Server) composite(ctx context.Context, seq *sequence.Sequence, white float64) (*imaging.Composite, error) {
	if white <= 0 {
		var err error
		if white, err = imaging.WhiteLevel(ctx, seq); err != nil {
			return nil, err
		}
	}
	return imaging.NewComposite(ctx, seq, white)
}

func (s *Server) storeCalibration(name string, t transform.LinearAffine[float64]) {
	s.mu.Lock()
	s.calibrations[name] = t
	s.mu.Unlock()
}

// calibration returns the named calibration. An empty name is the identity.
func (s *Server) calibration(name string) (transform.LinearAffine[float64], error) {
	if name == "" {
		return transform.Identity[float64](), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.calibrations[name]
	if !ok {
		return t, fmt.Errorf("unknown calibration %q", name)
	}
	return t, nil
}
