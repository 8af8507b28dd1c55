package verify_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vidcheck/internal/testsupport"
	"vidcheck/internal/verify"
)

type fakeOracle struct {
	calls   atomic.Int32
	gate    chan struct{}
	err     error
	verdict string
}

func (f *fakeOracle) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return "", f.err
	}
	if f.verdict != "" {
		return f.verdict, nil
	}
	return "verdict for " + prompt, nil
}

func TestKeyIsHexSHA256(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := verify.Key("abc"); got != want {
		t.Fatalf("Key(abc) = %s, want %s", got, want)
	}
}

func TestVerifyCachesInMemory(t *testing.T) {
	oracle := &fakeOracle{}
	client, err := verify.NewClient(oracle, 4)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx := context.Background()

	first := client.Verify(ctx, "prompt")
	if first.Failed || first.Cached || first.Verdict != "verdict for prompt" {
		t.Fatalf("unexpected first result %+v", first)
	}
	if first.Confidence != nil {
		t.Fatal("confidence must be absent")
	}
	second := client.Verify(ctx, "prompt")
	if !second.Cached || second.Verdict != first.Verdict || second.Key != first.Key {
		t.Fatalf("unexpected second result %+v", second)
	}
	if n := oracle.calls.Load(); n != 1 {
		t.Fatalf("expected 1 oracle call, got %d", n)
	}
}

func TestVerifyDistinctPromptsMissCache(t *testing.T) {
	oracle := &fakeOracle{}
	client, _ := verify.NewClient(oracle, 4)
	client.Verify(context.Background(), "a")
	client.Verify(context.Background(), "a ")
	if n := oracle.calls.Load(); n != 2 {
		t.Fatalf("expected 2 oracle calls for distinct prompts, got %d", n)
	}
}

func TestVerifyErrorIsTextualAndNotCached(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("quota exceeded")}
	client, _ := verify.NewClient(oracle, 4)

	res := client.Verify(context.Background(), "prompt")
	if !res.Failed || res.Cached || res.Confidence != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Verdict != "Verification error: quota exceeded" {
		t.Fatalf("unexpected verdict %q", res.Verdict)
	}

	oracle.err = nil
	res = client.Verify(context.Background(), "prompt")
	if res.Failed || res.Cached {
		t.Fatalf("failure must not be cached, got %+v", res)
	}
	if n := oracle.calls.Load(); n != 2 {
		t.Fatalf("expected 2 oracle calls, got %d", n)
	}
}

func TestVerifyConcurrentCallersShareOneOracleCall(t *testing.T) {
	oracle := &fakeOracle{gate: make(chan struct{})}
	client, _ := verify.NewClient(oracle, 4)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]verify.Result, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = client.Verify(context.Background(), "same prompt")
		}()
	}
	// Let the callers pile up on the in-flight request before releasing it.
	deadline := time.Now().Add(2 * time.Second)
	for oracle.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(oracle.gate)
	wg.Wait()

	if n := oracle.calls.Load(); n != 1 {
		t.Fatalf("expected exactly 1 oracle call, got %d", n)
	}
	for i, res := range results {
		if res.Failed || res.Verdict != "verdict for same prompt" {
			t.Fatalf("caller %d got %+v", i, res)
		}
	}
}

func TestVerifyUsesPersistentStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	oracle := &fakeOracle{verdict: "likely fake"}
	first, _ := verify.NewClient(oracle, 4, verify.WithStore(store), verify.WithModel("test-model"))
	if res := first.Verify(ctx, "prompt"); res.Failed || res.Cached {
		t.Fatalf("unexpected first result %+v", res)
	}

	stored, ok, err := store.Get(ctx, verify.Key("prompt"))
	if err != nil || !ok {
		t.Fatalf("expected stored verdict, ok=%v err=%v", ok, err)
	}
	if stored.Text != "likely fake" || stored.Model != "test-model" {
		t.Fatalf("unexpected stored verdict %+v", stored)
	}

	// A fresh client has an empty LRU but shares the store.
	second, _ := verify.NewClient(oracle, 4, verify.WithStore(store))
	res := second.Verify(ctx, "prompt")
	if !res.Cached || res.Verdict != "likely fake" {
		t.Fatalf("expected store hit, got %+v", res)
	}
	if n := oracle.calls.Load(); n != 1 {
		t.Fatalf("expected 1 oracle call, got %d", n)
	}
}

func TestVerifyFailureNotPersisted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	client, _ := verify.NewClient(&fakeOracle{err: errors.New("boom")}, 4, verify.WithStore(store))

	res := client.Verify(context.Background(), "prompt")
	if !res.Failed || !strings.HasPrefix(res.Verdict, "Verification error: ") {
		t.Fatalf("unexpected result %+v", res)
	}
	if _, ok, _ := store.Get(context.Background(), verify.Key("prompt")); ok {
		t.Fatal("failed verification must not be stored")
	}
}

func TestVerifyCancelledCaller(t *testing.T) {
	oracle := &fakeOracle{gate: make(chan struct{})}
	defer close(oracle.gate)
	client, _ := verify.NewClient(oracle, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := client.Verify(ctx, "prompt")
	if !res.Failed || !strings.Contains(res.Verdict, context.Canceled.Error()) {
		t.Fatalf("expected cancellation failure, got %+v", res)
	}
}
