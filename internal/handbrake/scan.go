package handbrake

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// Title describes one title found on the disc, with the metadata the
// rip flow needs.
type Title struct {
	Index             int
	Name              string
	Duration          time.Duration
	SubtitleLanguages []string
}

// TitleSet is the parsed result of a disc scan.
type TitleSet struct {
	Titles []Title
}

// Lookup returns the title with the given index.
func (ts *TitleSet) Lookup(index int) (Title, bool) {
	for _, t := range ts.Titles {
		if t.Index == index {
			return t, true
		}
	}
	return Title{}, false
}

// Indexes returns every title index present in the scan.
func (ts *TitleSet) Indexes() []int {
	indexes := make([]int, 0, len(ts.Titles))
	for _, t := range ts.Titles {
		indexes = append(indexes, t.Index)
	}
	return indexes
}

// Scan runs a scan of all titles on the device and returns the parsed
// title set. Scan progress (0..1) is reported through progress when it
// is non-nil.
func (c *Client) Scan(ctx context.Context, device string, progress func(float64)) (*TitleSet, error) {
	var titleSet *TitleSet

	err := c.run(ctx, []string{"--scan", "-t", "0", "-i", device}, func(ev Event) error {
		switch ev.Name {
		case "JSON Title Set":
			titleSet = parseTitleSet(ev.Data)
		case "Progress":
			if progress == nil {
				return nil
			}
			if v := ev.Data.Get("Scanning.Progress"); v.Exists() {
				progress(v.Float())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if titleSet == nil {
		return nil, ErrNoScanOutput
	}
	return titleSet, nil
}

func parseTitleSet(data gjson.Result) *TitleSet {
	ts := &TitleSet{}

	data.Get("TitleList").ForEach(func(_, t gjson.Result) bool {
		title := Title{
			Index: int(t.Get("Index").Int()),
			Name:  t.Get("Name").String(),
		}

		d := t.Get("Duration")
		title.Duration = time.Duration(d.Get("Hours").Int())*time.Hour +
			time.Duration(d.Get("Minutes").Int())*time.Minute +
			time.Duration(d.Get("Seconds").Int())*time.Second

		seen := make(map[string]bool)
		t.Get("SubtitleList").ForEach(func(_, s gjson.Result) bool {
			lang := s.Get("LanguageCode").String()
			if lang != "" && !seen[lang] {
				seen[lang] = true
				title.SubtitleLanguages = append(title.SubtitleLanguages, lang)
			}
			return true
		})

		ts.Titles = append(ts.Titles, title)
		return true
	})

	return ts
}
