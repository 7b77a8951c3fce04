package flatfile

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagwatch/pkg/domain/model"
	"github.com/m-mizutani/tagwatch/pkg/domain/types"
)

// lineError describes a skipped line
type lineError struct {
	Line int
	Text string
	Err  error
}

// parseRepositories reads one "owner/name" per line. A leading "-" bullet is
// stripped, "#" comments and blank lines are ignored, duplicates keep the first
// occurrence.
func parseRepositories(data []byte) ([]types.RepoKey, []*lineError, error) {
	var repos []types.RepoKey
	var skipped []*lineError
	seen := make(map[types.RepoKey]struct{})

	err := forEachLine(data, func(n int, line string) {
		text := strings.TrimSpace(line)
		text = strings.TrimSpace(strings.TrimPrefix(text, "-"))
		if text == "" || strings.HasPrefix(text, "#") {
			return
		}

		repo, err := types.ParseRepoKey(text)
		if err != nil {
			skipped = append(skipped, &lineError{Line: n, Text: line, Err: err})
			return
		}
		if _, ok := seen[repo]; ok {
			return
		}
		seen[repo] = struct{}{}
		repos = append(repos, repo)
	})
	if err != nil {
		return nil, nil, err
	}

	return repos, skipped, nil
}

func encodeRepositories(repos []types.RepoKey) []byte {
	var buf bytes.Buffer
	for _, repo := range repos {
		buf.WriteString(repo.String())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// parseHistory reads "owner/name:tag" lines, optionally followed by
// "\tprevious_tag\turl". The line is split on the first ":". A repeated
// repository keeps its first position and its last value.
func parseHistory(data []byte) ([]*model.TagRecord, []*lineError, error) {
	var records []*model.TagRecord
	var skipped []*lineError
	index := make(map[types.RepoKey]int)

	err := forEachLine(data, func(n int, line string) {
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			return
		}

		rec, err := parseHistoryLine(strings.TrimRight(line, "\r"))
		if err != nil {
			skipped = append(skipped, &lineError{Line: n, Text: line, Err: err})
			return
		}

		if i, ok := index[rec.Repository]; ok {
			records[i] = rec
			return
		}
		index[rec.Repository] = len(records)
		records = append(records, rec)
	})
	if err != nil {
		return nil, nil, err
	}

	return records, skipped, nil
}

func parseHistoryLine(line string) (*model.TagRecord, error) {
	key, rest, ok := strings.Cut(line, ":")
	if !ok {
		return nil, goerr.New("missing ':' separator")
	}

	repo, err := types.ParseRepoKey(key)
	if err != nil {
		return nil, err
	}

	fields := strings.Split(rest, "\t")
	rec := &model.TagRecord{
		Repository: repo,
		Tag:        strings.TrimSpace(fields[0]),
	}
	if rec.Tag == "" {
		return nil, goerr.New("empty tag")
	}
	if len(fields) > 1 {
		rec.PreviousTag = strings.TrimSpace(fields[1])
	}
	if len(fields) > 2 {
		rec.URL = strings.TrimSpace(fields[2])
	}

	return rec, nil
}

// encodeHistory writes records followed by the unparsed lines, which are
// kept as they were read so a rewrite never loses them
func encodeHistory(records []*model.TagRecord, unparsed []*lineError) []byte {
	var buf bytes.Buffer
	for _, rec := range records {
		buf.WriteString(rec.Repository.String())
		buf.WriteByte(':')
		buf.WriteString(rec.Tag)
		if rec.PreviousTag != "" || rec.URL != "" {
			buf.WriteByte('\t')
			buf.WriteString(rec.PreviousTag)
			buf.WriteByte('\t')
			buf.WriteString(rec.URL)
		}
		buf.WriteByte('\n')
	}
	for _, s := range unparsed {
		buf.WriteString(strings.TrimRight(s.Text, "\r"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func forEachLine(data []byte, f func(n int, line string)) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		n++
		f(n, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to scan lines", goerr.V("line", n+1))
	}
	return nil
}
