package capital

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"10000", "10000", true},
		{"  2500.75 ", "2500.75", true},
		{"$1,000,000", "1000000", true},
		{"1e6", "1000000", true},
		{"0", "", false},
		{"-100", "", false},
		{"abc", "", false},
		{"", "", false},
		{"NaN", "", false},
		{"inf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r := Parse(tt.input)
			assert.Equal(t, tt.ok, r.OK())
			if tt.ok {
				assert.True(t, r.Amount.Equal(decimal.RequireFromString(tt.want)), r.Amount.String())
				return
			}
			var capErr *contracts.InvalidCapitalError
			assert.True(t, errors.As(r.Err, &capErr))
		})
	}
}

func TestPrompter_RetriesUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("lots\n-5\n25000\n"), &out, 5, logger.Nop())

	r := p.Ask(context.Background())
	require.True(t, r.OK())
	assert.True(t, r.Amount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, 3, strings.Count(out.String(), Prompt))
}

func TestPrompter_SecondAttemptIsValidated(t *testing.T) {
	p := NewPrompter(strings.NewReader("x\ny\n"), &bytes.Buffer{}, 2, logger.Nop())

	r := p.Ask(context.Background())
	assert.False(t, r.OK())

	var capErr *contracts.InvalidCapitalError
	require.True(t, errors.As(r.Err, &capErr))
	assert.Equal(t, "y", capErr.Input)
}

func TestPrompter_Bounded(t *testing.T) {
	var out bytes.Buffer
	input := strings.Repeat("nope\n", 10)
	p := NewPrompter(strings.NewReader(input), &out, 3, logger.Nop())

	r := p.Ask(context.Background())
	assert.False(t, r.OK())
	assert.Equal(t, 3, strings.Count(out.String(), Prompt))
}

func TestPrompter_EOF(t *testing.T) {
	r := NewPrompter(strings.NewReader(""), &bytes.Buffer{}, 0, logger.Nop()).Ask(context.Background())
	assert.False(t, r.OK())
}

func TestPrompter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewPrompter(strings.NewReader("100\n"), &bytes.Buffer{}, 5, logger.Nop()).Ask(ctx)
	assert.ErrorIs(t, r.Err, context.Canceled)
}
