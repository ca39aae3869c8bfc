package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/renderer/renderertest"
	"github.com/spaghettifunk/archview/engine/shaders"
)

func TestRenderCacheDispose(t *testing.T) {
	b := renderertest.New()
	rc, err := NewRenderCache(RenderCacheConfig{DecodeWorkers: 2}, b, shaders.Embedded())
	if err != nil {
		t.Fatalf("NewRenderCache: %v", err)
	}
	source := assets.NewMapSource(map[string][]byte{"a.blp": blpBytes(), "b.blp": blpBytes()})

	for _, kind := range metadata.AllShaderKinds() {
		if _, err := rc.GetShader(kind); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := rc.GetOrCreateTexture("a.blp", source, repeat, repeat); err != nil {
		t.Fatal(err)
	}
	if _, err := rc.GetOrCreateTextureWithOverride("", "missing.blp", source, repeat, repeat); err != nil {
		t.Fatal(err)
	}
	if n, err := rc.PrefetchTextures([]string{"b.blp"}, source, repeat, repeat); err != nil || n != 1 {
		t.Fatalf("PrefetchTextures: %d %v", n, err)
	}
	if n, _ := rc.TextureCount(); n != 2 {
		t.Fatalf("expected 2 cached textures, got %d", n)
	}

	if err := rc.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if !rc.IsDisposed() {
		t.Error("expected the cache to report disposal")
	}
	for _, rt := range []metadata.ResourceType{metadata.ResourceTypeTexture, metadata.ResourceTypeProgram, metadata.ResourceTypeShaderStage} {
		if n := b.LiveCount(rt); n != 0 {
			t.Errorf("%d %s objects leaked", n, rt)
		}
	}
	for h, n := range b.Deleted {
		if n != 1 {
			t.Errorf("handle %d deleted %d times", h, n)
		}
	}

	checks := map[string]error{}
	_, checks["GetShader"] = rc.GetShader(metadata.ShaderKindPlain2D)
	_, checks["Shaders"] = rc.Shaders()
	_, checks["GetOrCreateTexture"] = rc.GetOrCreateTexture("a.blp", source, repeat, repeat)
	_, checks["GetOrCreateTextureWithOverride"] = rc.GetOrCreateTextureWithOverride("a.blp", "", source, repeat, repeat)
	_, checks["PrefetchTextures"] = rc.PrefetchTextures([]string{"a.blp"}, source, repeat, repeat)
	_, checks["HasTexture"] = rc.HasTexture("a.blp")
	_, checks["Texture"] = rc.Texture("a.blp")
	_, checks["FallbackTexture"] = rc.FallbackTexture()
	_, checks["TextureCount"] = rc.TextureCount()
	checks["Dispose"] = rc.Dispose()
	for name, err := range checks {
		if !errors.Is(err, core.ErrObjectDisposed) {
			t.Errorf("%s after Dispose: expected ErrObjectDisposed, got %v", name, err)
		}
	}
}

func TestRenderCacheDelegates(t *testing.T) {
	b := renderertest.New()
	rc, err := NewRenderCache(RenderCacheConfig{}, b, shaders.Embedded())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Dispose()

	source := assets.NewMapSource(map[string][]byte{"Textures/Rock.blp": blpBytes()})
	a, _ := rc.GetOrCreateTexture("Textures/Rock.blp", source, repeat, repeat)
	c, _ := rc.GetOrCreateTexture("textures\\rock.blp", source, repeat, repeat)
	if a != c {
		t.Error("equivalent paths must share a texture")
	}
	if ok, _ := rc.HasTexture("TEXTURES/ROCK.BLP"); !ok {
		t.Error("HasTexture must find the cached texture")
	}
	if got, _ := rc.Texture("textures/rock.blp"); got != a {
		t.Error("Texture must return the cached texture")
	}

	p1, _ := rc.GetShader(metadata.ShaderKindBaseGrid)
	ss, _ := rc.Shaders()
	p2, _ := ss.Get(metadata.ShaderKindBaseGrid)
	if p1 == nil || p1 != p2 {
		t.Error("the registry behind the cache must be shared")
	}
}

func TestRenderCacheArguments(t *testing.T) {
	if _, err := NewRenderCache(RenderCacheConfig{}, nil, shaders.Embedded()); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
