package backend

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

var ansiEscape = regexp.MustCompile(`\x1B\[[0-?]*[ -/]*[@-~]`)

// pad right-fills s to w terminal cells so columns line up with wide glyphs.
func pad(s string, w int) string {
	return runewidth.FillRight(s, w)
}

// lines splits tool output into lines without trailing CR.
func lines(out []byte) []string {
	var result []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		result = append(result, strings.TrimRight(scanner.Text(), "\r"))
	}
	return result
}

// stripANSI removes terminal color sequences (iwctl colors its tables).
func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// reason picks the most useful diagnostic text from a failed command.
func reason(res domain.CommandResult) string {
	if s := strings.TrimSpace(string(res.Stderr)); s != "" {
		return s
	}
	return strings.TrimSpace(string(res.Stdout))
}

// markActive sets Active on the option whose ID equals active.
func markActive(opts []domain.BackendOption, active string) {
	for i := range opts {
		opts[i].Active = active != "" && opts[i].ID == active
	}
}
