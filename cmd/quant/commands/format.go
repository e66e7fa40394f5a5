package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// 표 데이터(rank 결과)는 stdout, 상태 메시지는 status 로 출력
// ═══════════════════════════════════════════════════════════

// status receives progress and result messages
var status io.Writer = os.Stderr

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(status, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(status, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(status, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintf(status, "ℹ️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(status, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTable prints left-aligned columns with a rule under the header
func PrintTable(w io.Writer, columns []string, widths []int, rows [][]string) {
	printRow(w, columns, widths)

	total := 2 * (len(widths) - 1)
	for _, width := range widths {
		total += width
	}
	fmt.Fprintln(w, strings.Repeat("─", total))

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, len(values))
	for i, val := range values {
		cells[i] = fmt.Sprintf("%-*s", widths[i], val)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
}
