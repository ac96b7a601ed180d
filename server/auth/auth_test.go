package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc, err := NewService("test-secret", "houseofblackjack", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue("user-1", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "Alice", id.Name)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a, err := NewService("secret-a", "houseofblackjack", time.Hour)
	require.NoError(t, err)
	b, err := NewService("secret-b", "houseofblackjack", time.Hour)
	require.NoError(t, err)

	token, err := a.Issue("user-1", "Alice")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc, err := NewService("test-secret", "houseofblackjack", -time.Minute)
	require.NoError(t, err)
	// ttl<=0 falls back to a day, so build an expired token by hand.
	svc.ttl = -time.Minute

	token, err := svc.Issue("user-1", "Alice")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewService("test-secret", "", time.Hour)
	require.NoError(t, err)
	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestServiceRequiresSecret(t *testing.T) {
	_, err := NewService("", "x", time.Hour)
	assert.Error(t, err)
}

func TestObserverFiresCurrentOnSubscribe(t *testing.T) {
	o := NewObserver()

	var got []*Identity
	unsub := o.Subscribe(func(id *Identity) { got = append(got, id) })
	defer unsub()

	require.Len(t, got, 1)
	assert.Nil(t, got[0], "starts signed out")

	o.SignedIn(Identity{UserID: "u1", Name: "Alice"})
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[1].UserID)

	o.SignedOut()
	require.Len(t, got, 3)
	assert.Nil(t, got[2])
}

func TestObserverUnsubscribeStopsDelivery(t *testing.T) {
	o := NewObserver()
	count := 0
	unsub := o.Subscribe(func(*Identity) { count++ })
	unsub()
	o.SignedIn(Identity{UserID: "u1"})
	assert.Equal(t, 1, count, "only the initial fire")
}

func TestObserverLateSubscriberSeesLogin(t *testing.T) {
	o := NewObserver()
	o.SignedIn(Identity{UserID: "u2"})

	var got *Identity
	unsub := o.Subscribe(func(id *Identity) { got = id })
	defer unsub()
	require.NotNil(t, got)
	assert.Equal(t, "u2", got.UserID)
}
