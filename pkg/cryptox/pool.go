package cryptox

import (
	"context"
	"runtime"
)

// Pool bounds the number of concurrent Argon2id derivations so a burst of
// signups cannot pin every CPU. Callers wait for a slot and a result, or bail
// out when their context is done; the hash itself always runs off the calling
// goroutine.
type Pool struct {
	hasher *Hasher
	sem    chan struct{}
}

// NewPool returns a Pool running at most workers concurrent hashes.
// workers <= 0 defaults to GOMAXPROCS.
func NewPool(h *Hasher, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		hasher: h,
		sem:    make(chan struct{}, workers),
	}
}

type hashResult struct {
	blob string
	err  error
}

// Hash derives a password hash on a pool slot. If ctx is cancelled while
// waiting for a slot or for the derivation to finish, Hash returns ctx.Err();
// an in-flight derivation still completes in the background and releases its
// slot.
func (p *Pool) Hash(ctx context.Context, password string) (string, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	ch := make(chan hashResult, 1)
	go func() {
		defer func() { <-p.sem }()
		blob, err := p.hasher.Hash(password)
		ch <- hashResult{blob: blob, err: err}
	}()

	select {
	case res := <-ch:
		return res.blob, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Verify checks a password against a stored blob on a pool slot, with the
// same cancellation behaviour as Hash.
func (p *Pool) Verify(ctx context.Context, password, encodedHash string) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	ch := make(chan error, 1)
	go func() {
		defer func() { <-p.sem }()
		ch <- p.hasher.Verify(password, encodedHash)
	}()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
