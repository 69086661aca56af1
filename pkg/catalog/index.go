package catalog

import (
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/samber/lo"
)

// indexLinePattern matches a well-formed index row:
// distribution;version;arch;variant;timestamp;/path/.../
var indexLinePattern = regexp.MustCompile(`^(.+;){5}(/.+){6}/$`)

const timestampLayout = "20060102_15:04"

// Query implements spec.md §4.3's query: fetch the index, keep only
// syntactically valid lines, parse each, and keep entries for the
// requested (distribution, version, arch) with variant "default".
func (c *LxdCatalog) Query(distribution, version, arch string) ([]ImageMeta, error) {
	body, err := fetchText(c.IndexURL)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(body, "\n")
	parsed := lo.FilterMap(lines, func(line string, _ int) (ImageMeta, bool) {
		meta, ok := parseIndexLine(line)
		if !ok {
			return ImageMeta{}, false
		}
		if meta.Distribution != distribution || meta.Version != version || meta.Arch != arch {
			return ImageMeta{}, false
		}
		return meta, true
	})

	if len(parsed) == 0 {
		return nil, ierrors.New(ierrors.KindImageNotFound, "no matching image for "+distribution+"/"+version+"/"+arch)
	}
	return parsed, nil
}

// parseIndexLine parses one "distribution;version;arch;variant;timestamp;
// path_suffix" row, keeping only variant=="default" entries with a
// parseable timestamp. A malformed line or unparseable timestamp drops
// the entry rather than failing the whole query.
func parseIndexLine(line string) (ImageMeta, bool) {
	if !indexLinePattern.MatchString(line) {
		return ImageMeta{}, false
	}

	fields := strings.Split(line, ";")
	if len(fields) != 6 {
		return ImageMeta{}, false
	}

	distribution, version, arch, variant, tsField, pathSuffix := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]
	if variant != "default" {
		return ImageMeta{}, false
	}

	ts, err := time.Parse(timestampLayout, tsField)
	if err != nil {
		return ImageMeta{}, false
	}

	return ImageMeta{
		Distribution: distribution,
		Version:      version,
		Arch:         arch,
		UploadTS:     ts,
		PathSuffix:   pathSuffix,
	}, true
}

// Newest implements spec.md §4.3's newest: the maximum by timestamp,
// tie-broken by keeping the last such entry in index order.
func (c *LxdCatalog) Newest(entries []ImageMeta) (ImageMeta, error) {
	return newest(entries)
}

func newest(entries []ImageMeta) (ImageMeta, error) {
	if len(entries) == 0 {
		return ImageMeta{}, ierrors.New(ierrors.KindImageMetaNotFound, "no image entries to select from")
	}

	best := entries[0]
	for _, entry := range entries[1:] {
		if !entry.UploadTS.Before(best.UploadTS) {
			best = entry
		}
	}
	return best, nil
}

// IsCurrent implements spec.md §4.3's is_current: fetch the remote
// signature file for newest's path and byte-compare it to the local
// file. A missing local file means "not current", not an error.
func (c *LxdCatalog) IsCurrent(localHashFile string, newest ImageMeta) (bool, error) {
	remote, err := fetchBytes(c.ServerRoot + newest.PathSuffix + rootfsHashFile)
	if err != nil {
		return false, err
	}

	local, err := readFileIfExists(localHashFile)
	if err != nil {
		return false, ierrors.Wrap(ierrors.KindImageNotFound, err, "reading local hash file")
	}
	if local == nil {
		return false, nil
	}

	return string(local) == string(remote), nil
}

func fetchText(url string) (string, error) {
	raw, err := fetchBytes(url)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func fetchBytes(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.KindImageNotFound, err, "fetching "+url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ierrors.New(ierrors.KindImageNotFound, "unexpected status fetching "+url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.KindImageNotFound, err, "reading body of "+url)
	}
	return body, nil
}
