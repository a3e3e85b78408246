package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopSchedulerHooks{}
	s.OnStepStart(ctx, "tweets")
	s.OnStepSkipped(ctx, "agenda")
	s.OnStepComplete(ctx, "tweets", time.Second, errors.New("boom"), true)

	p := NoopProviderHooks{}
	p.OnProviderRun(ctx, "votes", time.Millisecond, nil)
	p.OnProviderReady(ctx, "agenda", time.Second)

	l := NoopLayoutHooks{}
	l.OnLayoutComplete(ctx, 40, 12, false, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "http")
	c.OnCacheSet(ctx, "layout", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.org", "/agenda.json")
	h.OnResponse(ctx, "GET", "example.org", "/agenda.json", 200, time.Second)
	h.OnError(ctx, "GET", "example.org", "/agenda.json", nil)
	h.OnRetry(ctx, "agenda", 1, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Scheduler() should return NoopSchedulerHooks by default")
	}
	if _, ok := Provider().(NoopProviderHooks); !ok {
		t.Error("Provider() should return NoopProviderHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customScheduler := &testSchedulerHooks{}
	SetSchedulerHooks(customScheduler)
	if Scheduler() != customScheduler {
		t.Error("SetSchedulerHooks should set custom hooks")
	}

	customProvider := &testProviderHooks{}
	SetProviderHooks(customProvider)
	if Provider() != customProvider {
		t.Error("SetProviderHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
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

	Reset()
	if _, ok := Scheduler().(NoopSchedulerHooks); !ok {
		t.Error("Reset() should restore NoopSchedulerHooks")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testSchedulerHooks{}
	SetSchedulerHooks(custom)
	SetSchedulerHooks(nil)

	if Scheduler() != custom {
		t.Error("SetSchedulerHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testSchedulerHooks struct{ NoopSchedulerHooks }
type testProviderHooks struct{ NoopProviderHooks }
type testLayoutHooks struct{ NoopLayoutHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
