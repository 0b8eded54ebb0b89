package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	sales := &fakeFeature{name: "sales", enabled: true}
	archive := &fakeFeature{name: "archive", enabled: false}

	m := NewManager(zap.NewNop())
	m.Register(sales)
	m.Register(archive)

	assert.NoError(t, m.LoadAll(fiber.New()))
	assert.True(t, sales.loaded)
	assert.False(t, archive.loaded)
	assert.Len(t, m.Features(), 2)
}

func TestManager_LoadAllError(t *testing.T) {
	m := NewManager(nil)
	m.Register(&fakeFeature{name: "sync", enabled: true, err: errors.New("boom")})

	err := m.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "failed to load feature sync")
}

func TestManager_Duplicate(t *testing.T) {
	m := NewManager(nil)
	m.Register(&fakeFeature{name: "sales", enabled: true})
	m.Register(&fakeFeature{name: "sales", enabled: true})

	assert.ErrorContains(t, m.LoadAll(fiber.New()), "registered twice")
}
