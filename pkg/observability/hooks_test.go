package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnIngestStart(ctx, "markdown", "doc.md")
	p.OnIngestComplete(ctx, "markdown", "doc.md", 100, time.Second, nil)
	p.OnTransformStart(ctx, "toc")
	p.OnTransformComplete(ctx, "toc", time.Second, nil)
	p.OnRenderStart(ctx, "gfm")
	p.OnRenderComplete(ctx, "gfm", 1024, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "tree")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/convert")
	h.OnResponse(ctx, "POST", "/convert", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep the previous hooks")
	}

	Reset()
}

type testPipelineHooks struct{ NoopPipelineHooks }

type testCacheHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *testCacheHooks) OnCacheMiss(context.Context, string) { h.misses++ }

type testHTTPHooks struct{ NoopHTTPHooks }

func TestCustomCacheHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testCacheHooks{}
	SetCacheHooks(custom)

	ctx := context.Background()
	Cache().OnCacheHit(ctx, "render")
	Cache().OnCacheMiss(ctx, "render")
	Cache().OnCacheMiss(ctx, "tree")

	if custom.hits != 1 || custom.misses != 2 {
		t.Errorf("hits=%d misses=%d, want 1 and 2", custom.hits, custom.misses)
	}
}
