package mcpserver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/registry"
	"github.com/erraggy/modeltools/resolver"
	lru "github.com/hashicorp/golang-lru/v2"
)

// modelInput represents the two ways to supply a model to a tool.
// Exactly one of File or Content must be set.
type modelInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to a model file on disk (YAML or JSON)"`
	Content string `json:"content,omitempty" jsonschema:"Inline model content (YAML or JSON)"`
}

// targetInput selects the registry view for a tool call.
type targetInput struct {
	TargetVersion string `json:"target_version,omitempty" jsonschema:"Target product version such as 14.1.2. Defaults to the server setting."`
	TargetMode    string `json:"target_mode,omitempty"    jsonschema:"offline or online. Defaults to the server setting."`
}

// resolve parses the model. The returned Dict is a private copy that the
// caller may modify.
func (m modelInput) resolve() (*model.Dict, error) {
	set := 0
	if m.File != "" {
		set++
	}
	if m.Content != "" {
		set++
	}
	switch {
	case set == 0:
		return nil, errors.New("exactly one of file or content must be provided")
	case set > 1:
		return nil, fmt.Errorf("exactly one of file or content must be provided, got %d", set)
	}

	if m.Content != "" {
		if int64(len(m.Content)) > cfg.MaxInlineSize {
			return nil, fmt.Errorf("inline content is %d bytes, limit is %d", len(m.Content), cfg.MaxInlineSize)
		}
		sum := sha256.Sum256([]byte(m.Content))
		key := "content:" + hex.EncodeToString(sum[:])
		return cachedParse(key, func() (*model.Dict, error) {
			return model.Parse([]byte(m.Content))
		})
	}

	path := filepath.Clean(m.File)
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("file:%s:%d:%d", path, info.ModTime().UnixNano(), info.Size())
	return cachedParse(key, func() (*model.Dict, error) {
		return model.Load(path)
	})
}

var (
	modelCacheOnce sync.Once
	modelCache     *lru.Cache[string, *model.Dict]
)

func cachedParse(key string, parse func() (*model.Dict, error)) (*model.Dict, error) {
	modelCacheOnce.Do(func() {
		modelCache, _ = lru.New[string, *model.Dict](cfg.CacheMaxSize)
	})
	if doc, ok := modelCache.Get(key); ok {
		return doc.Clone(), nil
	}
	doc, err := parse()
	if err != nil {
		return nil, err
	}
	modelCache.Add(key, doc)
	return doc.Clone(), nil
}

var defaultRegistry = sync.OnceValues(registry.Default)

var (
	resolverCacheOnce sync.Once
	resolverCache     *lru.Cache[string, *resolver.Resolver]
)

// resolver returns a cached Resolver for the requested target, falling back
// to the server defaults for empty fields.
func (t targetInput) resolver() (*resolver.Resolver, error) {
	version := t.TargetVersion
	if version == "" {
		version = defaults.TargetVersion
	}
	modeName := t.TargetMode
	if modeName == "" {
		modeName = defaults.TargetMode
	}
	mode, err := registry.ParseMode(modeName)
	if err != nil {
		return nil, err
	}

	resolverCacheOnce.Do(func() {
		resolverCache, _ = lru.New[string, *resolver.Resolver](cfg.CacheMaxSize)
	})
	key := version + "/" + mode.String()
	if r, ok := resolverCache.Get(key); ok {
		return r, nil
	}
	reg, err := defaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}
	r, err := resolver.New(reg, version, mode)
	if err != nil {
		return nil, err
	}
	resolverCache.Add(key, r)
	return r, nil
}
