package passage

import "context"

// Provider serves passages for the translations it owns.
type Provider interface {
	CanHandle(translation string) bool
	GetPassage(ctx context.Context, translation, reference string) (*Passage, error)
	Codes() []string
}

// ReadService fans a passage request out to the first provider that handles
// the translation.
type ReadService struct {
	providers []Provider
}

// NewReadService returns a ReadService over the given providers.
func NewReadService(providers ...Provider) *ReadService {
	return &ReadService{providers: providers}
}

// Resolve returns the passage for translation and reference, or (nil, nil)
// when no provider handles the translation or the reference resolves to
// nothing. Content misses are not errors here.
func (s *ReadService) Resolve(ctx context.Context, translation, reference string) (*Passage, error) {
	for _, p := range s.providers {
		if !p.CanHandle(translation) {
			continue
		}
		return p.GetPassage(ctx, translation, reference)
	}
	return nil, nil
}

// Translations lists every translation code served by any provider.
func (s *ReadService) Translations() []string {
	var out []string
	for _, p := range s.providers {
		out = append(out, p.Codes()...)
	}
	return out
}
