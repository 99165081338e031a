package verify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/emersion/go-mbox"
	"github.com/olekukonko/tablewriter"
)

// Summary is the outcome of verifying a set of files.
type Summary struct {
	Reports []Report

	// Problems are set-level violations: duplicate Message-IDs and gaps in
	// numbered file sequences.
	Problems []string
}

// OK reports whether every message and the set as a whole passed.
func (s *Summary) OK() bool {
	if len(s.Problems) > 0 {
		return false
	}
	for _, r := range s.Reports {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Failed returns the number of messages with problems.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Reports {
		if !r.OK() {
			n++
		}
	}
	return n
}

// Files verifies every .eml and .mbox file named by paths. Directories are
// scanned non-recursively. Message-IDs must be unique across all .eml files
// and within each mbox archive; an archive may hold copies of the .eml files
// written next to it.
func Files(paths []string) (*Summary, error) {
	s := &Summary{}
	var files []Report
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			reports, err := s.addFile(p)
			if err != nil {
				return nil, err
			}
			files = append(files, reports...)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(e.Name()))
			if ext != ".eml" && ext != ".mbox" {
				continue
			}
			names = append(names, e.Name())
			reports, err := s.addFile(filepath.Join(p, e.Name()))
			if err != nil {
				return nil, err
			}
			files = append(files, reports...)
		}
		for _, problem := range CheckSequence(names) {
			s.Problems = append(s.Problems, p+": "+problem)
		}
	}
	s.Problems = append(s.Problems, CheckUniqueIDs(files)...)
	return s, nil
}

// addFile inspects path and returns the reports of plain .eml files. Mbox
// archives are checked for duplicates on their own.
func (s *Summary) addFile(path string) ([]Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".mbox") {
		reports, err := readMbox(path, data)
		if err != nil {
			return nil, err
		}
		s.Reports = append(s.Reports, reports...)
		s.Problems = append(s.Problems, CheckUniqueIDs(reports)...)
		return nil, nil
	}
	r := Inspect(path, data)
	s.Reports = append(s.Reports, r)
	return []Report{r}, nil
}

func readMbox(path string, data []byte) ([]Report, error) {
	var reports []Report
	mr := mbox.NewReader(bytes.NewReader(data))
	for n := 1; ; n++ {
		r, err := mr.NextMessage()
		if errors.Is(err, io.EOF) {
			return reports, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading mbox %s: %w", path, err)
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading mbox %s message %d: %w", path, n, err)
		}
		reports = append(reports, Inspect(fmt.Sprintf("%s#%d", path, n), raw))
	}
}

// CheckUniqueIDs reports Message-IDs carried by more than one message.
func CheckUniqueIDs(reports []Report) []string {
	seen := make(map[string][]string)
	var order []string
	for _, r := range reports {
		if r.MessageID == "" {
			continue
		}
		if _, ok := seen[r.MessageID]; !ok {
			order = append(order, r.MessageID)
		}
		seen[r.MessageID] = append(seen[r.MessageID], r.Name)
	}

	var problems []string
	for _, id := range order {
		if names := seen[id]; len(names) > 1 {
			problems = append(problems, fmt.Sprintf("duplicate Message-ID %s in %s", id, strings.Join(names, ", ")))
		}
	}
	return problems
}

var numbered = regexp.MustCompile(`^(.+)_(\d+)\.eml$`)

// CheckSequence reports gaps in numbered file families such as
// bulk_email_0001.eml ... bulk_email_0100.eml. Each family must be numbered
// 1..N without holes.
func CheckSequence(names []string) []string {
	families := make(map[string][]int)
	for _, name := range names {
		m := numbered.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		families[m[1]] = append(families[m[1]], n)
	}

	prefixes := make([]string, 0, len(families))
	for prefix := range families {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	var problems []string
	for _, prefix := range prefixes {
		nums := families[prefix]
		sort.Ints(nums)
		for i, n := range nums {
			if n != i+1 {
				problems = append(problems, fmt.Sprintf("%s_* files are not numbered 1..%d: expected %d, found %d",
					prefix, len(nums), i+1, n))
				break
			}
		}
	}
	return problems
}

// Render prints one table row per message followed by the set-level
// problems.
func (s *Summary) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetBorders(tablewriter.Border{Left: true, Right: true, Top: false, Bottom: false})
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"File", "Size", "Parts", "Attach", "Inline", "Fwd", "Status"})
	for _, r := range s.Reports {
		status := "ok"
		if !r.OK() {
			status = strings.Join(r.Problems, "; ")
		}
		table.Append([]string{
			r.Name,
			humanize.Bytes(uint64(r.Size)),
			strconv.Itoa(r.Parts),
			strconv.Itoa(r.Attachments),
			strconv.Itoa(r.Inline),
			strconv.Itoa(r.Forwards),
			status,
		})
	}
	table.Render()

	for _, p := range s.Problems {
		fmt.Fprintln(w, "Problem:", p)
	}
	fmt.Fprintf(w, "%d message(s), %d failed\n", len(s.Reports), s.Failed())
}
