package capital

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// DefaultAttempts bounds the interactive prompt
const DefaultAttempts = 5

// Prompt is printed before every read
const Prompt = "Enter the size of your portfolio: "

// Result is the outcome of parsing one capital input
type Result struct {
	Amount decimal.Decimal
	Err    error
}

// OK reports whether the amount is usable
func (r Result) OK() bool {
	return r.Err == nil
}

// Parse reads a capital amount such as "10000", "1,000,000.50" or "$2500".
// Non-numeric, non-finite and non-positive inputs yield an InvalidCapitalError.
func Parse(text string) Result {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "_", "")

	if cleaned == "" {
		return invalid(text, "empty input")
	}
	switch strings.ToLower(cleaned) {
	case "nan", "inf", "+inf", "-inf", "infinity", "+infinity", "-infinity":
		return invalid(text, "not a finite number")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return invalid(text, "not a number")
	}
	if !amount.IsPositive() {
		return invalid(text, "must be greater than zero")
	}
	return Result{Amount: amount}
}

func invalid(input, reason string) Result {
	return Result{Err: &contracts.InvalidCapitalError{Input: input, Reason: reason}}
}

// Prompter asks for capital on an interactive stream
type Prompter struct {
	in       *bufio.Scanner
	out      io.Writer
	attempts int
	logger   *logger.Logger
}

// NewPrompter creates a prompter reading lines from in and writing prompts to out
func NewPrompter(in io.Reader, out io.Writer, attempts int, log *logger.Logger) *Prompter {
	if attempts < 1 {
		attempts = DefaultAttempts
	}
	return &Prompter{
		in:       bufio.NewScanner(in),
		out:      out,
		attempts: attempts,
		logger:   log.Module("capital"),
	}
}

// Ask prompts until a valid amount is entered. Every attempt is validated;
// after the last failed attempt the most recent InvalidCapitalError is returned.
func (p *Prompter) Ask(ctx context.Context) Result {
	last := invalid("", "no input")

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{Err: err}
		}

		fmt.Fprint(p.out, Prompt)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return Result{Err: fmt.Errorf("read capital: %w", err)}
			}
			// EOF: 더 이상 입력 없음
			return last
		}

		last = Parse(p.in.Text())
		if last.OK() {
			return last
		}

		fmt.Fprintln(p.out, "That's not a valid amount! Please try again.")
		p.logger.WithFields(logger.Fields{
			"attempt": attempt,
			"max":     p.attempts,
		}).WithError(last.Err).Debug("Invalid capital input")
	}

	return last
}
