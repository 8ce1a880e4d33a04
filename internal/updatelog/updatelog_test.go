package updatelog

import (
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(i int) Record {
	return NewRecord(KindPlatform, "OpenAI", "https://openai.com/policies/terms-of-use",
		fmt.Sprintf("change %d", i), "Something changed.", time.UnixMilli(int64(i)))
}

func TestAppendNewestFirst(t *testing.T) {
	l := NewLogWithFS(afero.NewMemMapFs(), "data/updates.json", 50)

	require.NoError(t, l.Append(testRecord(1)))
	require.NoError(t, l.Append(testRecord(2)))
	require.NoError(t, l.Append(testRecord(3)))

	recs := l.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "change 3", recs[0].Title)
	assert.Equal(t, "change 1", recs[2].Title)
}

func TestAppendEnforcesCapacity(t *testing.T) {
	l := NewLogWithFS(afero.NewMemMapFs(), "data/updates.json", 5)

	for i := 1; i <= 12; i++ {
		require.NoError(t, l.Append(testRecord(i)))
	}

	recs := l.Records()
	require.Len(t, recs, 5)
	// Newest kept, oldest dropped.
	assert.Equal(t, "change 12", recs[0].Title)
	assert.Equal(t, "change 8", recs[4].Title)
}

func TestRecordsMissingFile(t *testing.T) {
	l := NewLogWithFS(afero.NewMemMapFs(), "data/updates.json", 50)
	assert.Empty(t, l.Records())
}

func TestRecordsCorruptFileResets(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/updates.json", []byte("{{not json"), 0o644))

	l := NewLogWithFS(fs, "data/updates.json", 50)
	assert.Empty(t, l.Records())

	// Appending after corruption starts a fresh sequence.
	require.NoError(t, l.Append(testRecord(1)))
	assert.Len(t, l.Records(), 1)
}

func TestRecordJSONShape(t *testing.T) {
	now := time.Date(2026, 8, 26, 3, 4, 5, 0, time.UTC)

	p := NewRecord(KindPlatform, "OpenAI", "https://openai.com/x", "t", "s", now)
	assert.Equal(t, "OpenAI", p.Platform)
	assert.Empty(t, p.Source)
	assert.Equal(t, now.UnixMilli(), p.ID)
	assert.Equal(t, "2026-08-26T03:04:05Z", p.Timestamp)

	g := NewRecord(KindPolicy, "OAIC", "https://oaic.gov.au/x", "t", "s", now)
	assert.Equal(t, "OAIC", g.Source)
	assert.Empty(t, g.Platform)
	assert.Equal(t, KindPolicy, g.Type)
}

func TestActionRequired(t *testing.T) {
	now := time.Now()

	r := NewRecord(KindPlatform, "OpenAI", "u", "t",
		"New compliance obligations apply to API users.", now)
	assert.True(t, r.ActionRequired)

	r = NewRecord(KindPlatform, "OpenAI", "u", "t",
		"Everything looks routine, no changes to worry about", now)
	assert.False(t, r.ActionRequired)

	r = NewRecord(KindPolicy, "OAIC", "u", "t",
		"The guidance is now MANDATORY for agencies.", now)
	assert.True(t, r.ActionRequired)

	r = NewRecord(KindPolicy, "OAIC", "u", "t",
		"Minor wording tidy-up only.", now)
	assert.False(t, r.ActionRequired)
}
