package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/record"
)

func TestDeduplicate_SharesInFlightCall(t *testing.T) {
	release := make(chan struct{})
	net := &fakeNetwork{result: &Result{Data: heroData("R2-D2", nil)}, block: release}
	d := Deduplicate(net)

	const callers = 8
	results := make([]*Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := d.Execute(context.Background(), heroRequest(CacheFirst))
			if err != nil {
				t.Errorf("Execute() error = %v", err)
				return
			}
			results[i] = res
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := net.callCount(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}

	// Each caller owns a detached copy.
	results[0].Data["hero"].(map[string]any)["name"] = "mutated"
	for i := 1; i < callers; i++ {
		if got := results[i].Data["hero"].(map[string]any)["name"]; got != "R2-D2" {
			t.Errorf("results[%d] name = %v, want R2-D2", i, got)
		}
	}
}

func TestDeduplicate_MutationsBypass(t *testing.T) {
	net := &fakeNetwork{result: &Result{Data: map[string]any{}}}
	d := Deduplicate(net)

	req := Request{RootKey: record.MutationRoot, Selections: normalize.SelectionSet{normalize.Leaf("ok")}}
	for i := 0; i < 3; i++ {
		if _, err := d.Execute(context.Background(), req); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}
	if got := net.callCount(); got != 3 {
		t.Errorf("network calls = %d, want 3", got)
	}
}

func TestDedupKey(t *testing.T) {
	base := heroRequest(CacheFirst)
	baseKey, ok := dedupKey(base)
	if !ok {
		t.Fatal("dedupKey() not derivable for a query")
	}

	withVars := base
	withVars.Variables = map[string]any{"episode": "JEDI"}
	otherShape := base
	otherShape.Selections = normalize.SelectionSet{normalize.Object("hero", normalize.Leaf("id"))}
	otherPolicy := base
	otherPolicy.Policy = NetworkOnly
	otherType := base
	otherType.Selections = normalize.SelectionSet{normalize.Object("hero", normalize.Leaf("id"), normalize.Leaf("name")).OfType("Droid")}

	tests := []struct {
		name     string
		req      Request
		wantSame bool
	}{
		{"different variables", withVars, false},
		{"different shape", otherShape, false},
		{"different policy", otherPolicy, true},
		{"different static type", otherType, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := dedupKey(tt.req)
			if !ok {
				t.Fatal("dedupKey() not derivable")
			}
			if (key == baseKey) != tt.wantSame {
				t.Errorf("dedupKey() = %q vs %q, wantSame %v", key, baseKey, tt.wantSame)
			}
		})
	}
}

func TestOrchestrator_DeduplicateConfig(t *testing.T) {
	release := make(chan struct{})
	net := &fakeNetwork{result: &Result{Data: heroData("R2-D2", nil)}, block: release}
	o, _ := newTestOrchestrator(t, net, Config{DefaultPolicy: NetworkOnly, Deduplicate: true})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Query(context.Background(), heroRequest(PolicyDefault)); err != nil {
				t.Errorf("Query() error = %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := net.callCount(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
}

// waitForWaiters blocks until n callers wait on the shared call for req.
func waitForWaiters(t *testing.T, n Network, req Request, want int) {
	t.Helper()
	d := n.(*dedupNetwork)
	key, _ := dedupKey(req)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		f := d.flights[key]
		got := 0
		if f != nil {
			got = f.waiters
		}
		d.mu.Unlock()
		if got == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("waiters never reached %d", want)
}

func TestDeduplicate_CallerCancellationIsIsolated(t *testing.T) {
	release := make(chan struct{})
	net := &fakeNetwork{result: &Result{Data: heroData("R2-D2", nil)}, block: release}
	d := Deduplicate(net)
	req := heroRequest(CacheFirst)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := d.Execute(ctxA, req)
		errA <- err
	}()
	waitForWaiters(t, d, req, 1)

	type outcome struct {
		res *Result
		err error
	}
	doneB := make(chan outcome, 1)
	go func() {
		res, err := d.Execute(context.Background(), req)
		doneB <- outcome{res, err}
	}()
	waitForWaiters(t, d, req, 2)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want %v", err, context.Canceled)
	}

	close(release)
	b := <-doneB
	if b.err != nil {
		t.Fatalf("remaining caller error = %v", b.err)
	}
	if got := b.res.Data["hero"].(map[string]any)["name"]; got != "R2-D2" {
		t.Errorf("remaining caller name = %v, want R2-D2", got)
	}
	if got := net.callCount(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
}

func TestDeduplicate_LastWaiterCancelsCall(t *testing.T) {
	stopped := make(chan error, 1)
	d := Deduplicate(NetworkFunc(func(ctx context.Context, req Request) (*Result, error) {
		<-ctx.Done()
		stopped <- ctx.Err()
		return nil, ctx.Err()
	}))
	req := heroRequest(CacheFirst)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := d.Execute(ctx, req)
		errc <- err
	}()
	waitForWaiters(t, d, req, 1)
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want %v", err, context.Canceled)
	}
	select {
	case err := <-stopped:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("shared call ctx error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(time.Second):
		t.Fatal("shared call was not cancelled after its last waiter left")
	}
}

func TestOrchestrator_DeduplicateClosedStreamLeavesOthersIntact(t *testing.T) {
	release := make(chan struct{})
	net := &fakeNetwork{result: &Result{Data: heroData("R2-D2", nil)}, block: release}
	o, _ := newTestOrchestrator(t, net, Config{DefaultPolicy: CacheFirst, Deduplicate: true})
	req := heroRequest(CacheFirst)
	ctx := context.Background()

	a := o.Execute(ctx, req)
	waitForWaiters(t, o.network, o.prepare(req), 1)
	b := o.Execute(ctx, req)
	waitForWaiters(t, o.network, o.prepare(req), 2)

	a.Close()
	close(release)

	responses, err := b.Collect(ctx)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(responses) != 1 || responses[0].IsFromCache {
		t.Fatalf("responses = %+v, want one network response", responses)
	}
	if got := net.callCount(); got != 1 {
		t.Errorf("network calls = %d, want 1", got)
	}
}
