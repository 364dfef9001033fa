package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/khalsa-property/backend/models"
)

func testForm(email string) models.LeadForm {
	return models.LeadForm{
		Name:    "A",
		Email:   email,
		Phone:   "123",
		Message: "hi",
		Purpose: "buy",
	}
}

func TestIssuePeekConsume(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(DefaultTTL)

	code, err := r.Issue(ctx, "a@x.com", testForm("a@x.com"))
	require.NoError(t, err)
	require.Len(t, code, 6)

	rec, ok, err := r.Peek(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, code, rec.Code)
	require.Equal(t, "A", rec.Form.Name)

	// Peek is read-only; the record is still there.
	_, ok, err = r.Peek(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.Consume(ctx, "a@x.com"))
	_, ok, err = r.Peek(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, ok)

	// Consuming an absent key is a no-op.
	require.NoError(t, r.Consume(ctx, "a@x.com"))
}

func TestPeekAbsentKey(t *testing.T) {
	r := NewMemoryRegistry(DefaultTTL)
	rec, ok, err := r.Peek(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, rec)
}

func TestReissueReplacesPendingRecord(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(DefaultTTL)

	first, err := r.Issue(ctx, "a@x.com", testForm("a@x.com"))
	require.NoError(t, err)

	second := first
	// Draw until the codes differ; collisions are possible but the stored
	// record must always be the latest one.
	for second == first {
		second, err = r.Issue(ctx, "a@x.com", testForm("a@x.com"))
		require.NoError(t, err)
	}

	rec, ok, err := r.Peek(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second, rec.Code)
	require.False(t, rec.Matches(first))
	require.True(t, rec.Matches(second))
}

func TestPeekExpiresOldRecords(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry(10 * time.Minute)

	base := time.Now()
	r.now = func() time.Time { return base }

	_, err := r.Issue(ctx, "a@x.com", testForm("a@x.com"))
	require.NoError(t, err)

	r.now = func() time.Time { return base.Add(9 * time.Minute) }
	_, ok, err := r.Peek(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)

	r.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, ok, err = r.Peek(ctx, "a@x.com")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGeneratedCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.GreaterOrEqual(t, code, "100000")
		require.LessOrEqual(t, code, "999999")
	}
}

func TestMatchesComparesAsIntegers(t *testing.T) {
	rec := &Pending{Code: "100000"}
	require.True(t, rec.Matches("100000"))
	require.True(t, rec.Matches("0100000"))
	require.False(t, rec.Matches("099999"))
	require.False(t, rec.Matches("abc"))
	require.False(t, rec.Matches(""))
}
