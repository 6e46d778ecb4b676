package cookies

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ytget/ytdl-server/internal/model"
)

// Jar format constants
const (
	MinJarFields   = 7
	CommentPrefix  = "#"
	JarTrueValue   = "TRUE"
	maxJarLineSize = 1 << 20
)

// ParseJar reads cookie records from a Netscape cookie-jar stream.
// Blank lines, lines starting with # and lines with fewer than seven
// tab-separated fields are skipped. An unparsable expiry is treated as a
// session cookie.
func ParseJar(r io.Reader) ([]model.CookieRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJarLineSize)

	var records []model.CookieRecord
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < MinJarFields {
			continue
		}

		expires, err := strconv.ParseInt(strings.TrimSpace(fields[4]), 10, 64)
		if err != nil || expires < 0 {
			expires = 0
		}

		records = append(records, model.CookieRecord{
			Domain:  fields[0],
			Flag:    strings.EqualFold(fields[1], JarTrueValue),
			Path:    fields[2],
			Secure:  strings.EqualFold(fields[3], JarTrueValue),
			Expires: expires,
			Name:    fields[5],
			Value:   strings.Join(fields[6:], "\t"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cookie jar: %w", err)
	}
	return records, nil
}

// ReadJarFile parses the cookie-jar file at path
func ReadJarFile(path string) ([]model.CookieRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie jar: %w", err)
	}
	defer f.Close()

	return ParseJar(f)
}
