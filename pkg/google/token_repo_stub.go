package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type TokenRepositoryStub struct {
	mu     sync.Mutex
	nonces map[int]string
	tokens map[int]oauth2.Token
	err    error
}

func NewTokenRepositoryStub() *TokenRepositoryStub {
	return &TokenRepositoryStub{
		nonces: make(map[int]string),
		tokens: make(map[int]oauth2.Token),
	}
}

func (r *TokenRepositoryStub) StartAuthorization(ctx context.Context, userId int, nonce string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nonces[userId] = nonce
	delete(r.tokens, userId)
	return nil
}

func (r *TokenRepositoryStub) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for userId, n := range r.nonces {
		if n == nonce {
			r.tokens[userId] = *token
			return nil
		}
	}
	return ErrUnknownNonce
}

func (r *TokenRepositoryStub) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	token, ok := r.tokens[userId]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

func (r *TokenRepositoryStub) Delete(ctx context.Context, userId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	delete(r.nonces, userId)
	delete(r.tokens, userId)
	return nil
}

func (r *TokenRepositoryStub) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
