// Package mock provides a mock embedding provider for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/smart-attendance/internal/embedding"
)

// Provider is a mock implementation of embedding.Provider. Responses are
// keyed by image content so tests can map fake image bytes to face sets.
type Provider struct {
	mu        sync.RWMutex
	responses map[string]*embedding.FaceResponse
	down      bool

	// DefaultResponse is returned for images with no registered response.
	DefaultResponse *embedding.FaceResponse

	// Error injection
	DetectError error
	EncodeError error

	// Call counters
	DetectCalls int
	EncodeCalls int
}

// NewProvider creates a new mock provider
func NewProvider() *Provider {
	return &Provider{
		responses: make(map[string]*embedding.FaceResponse),
	}
}

// AddImage registers the face response returned for the given image bytes.
func (p *Provider) AddImage(imageData []byte, resp embedding.FaceResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[string(imageData)] = &resp
}

// SetDown marks the provider as unreachable.
func (p *Provider) SetDown(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down = down
}

// DetectFaces returns the registered response for the image, or an empty
// response for unregistered images.
func (p *Provider) DetectFaces(ctx context.Context, imageData []byte) (*embedding.FaceResponse, error) {
	p.mu.Lock()
	p.DetectCalls++
	p.mu.Unlock()

	if p.DetectError != nil {
		return nil, p.DetectError
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if resp, ok := p.responses[string(imageData)]; ok {
		return resp, nil
	}
	if p.DefaultResponse != nil {
		return p.DefaultResponse, nil
	}
	return &embedding.FaceResponse{}, nil
}

// EncodeSingle returns the first registered descriptor for the image, or nil
// when the image has no faces.
func (p *Provider) EncodeSingle(ctx context.Context, imageData []byte) ([]float32, error) {
	p.mu.Lock()
	p.EncodeCalls++
	p.mu.Unlock()

	if p.EncodeError != nil {
		return nil, p.EncodeError
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	resp, ok := p.responses[string(imageData)]
	if !ok || len(resp.Faces) == 0 {
		return nil, nil
	}
	return resp.Faces[0].Embedding, nil
}

// Available reports the mock reachability flag.
func (p *Provider) Available(ctx context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.down
}
