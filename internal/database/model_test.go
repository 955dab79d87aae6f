package database

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVideo(name string) DatabaseVideo {
	return DatabaseVideo{
		URL:         "https://devbytes.example/" + name,
		Updated:     "2018-06-01T00:00:00.000Z",
		Title:       "Video " + name,
		Description: "All about " + name,
		Thumbnail:   "https://img.example/" + name + ".png",
	}
}

func urls(videos []DatabaseVideo) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.URL)
	}
	return out
}

func TestParseWriteMode(t *testing.T) {
	tests := []struct {
		in      string
		want    WriteMode
		wantErr bool
	}{
		{"", WriteReplace, false},
		{"replace", WriteReplace, false},
		{"UPSERT", WriteUpsert, false},
		{"append", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWriteMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsDomainModel(t *testing.T) {
	a, b := testVideo("a"), testVideo("b")

	got := AsDomainModel([]DatabaseVideo{a, b})

	require.Len(t, got, 2)
	assert.Equal(t, a.URL, got[0].URL)
	assert.Equal(t, a.Title, got[0].Title)
	assert.Equal(t, a.Description, got[0].Description)
	assert.Equal(t, a.Updated, got[0].Updated)
	assert.Equal(t, a.Thumbnail, got[0].Thumbnail)
	assert.Equal(t, b.URL, got[1].URL)
}

func TestAsDomainModel_EmptyIsNotNil(t *testing.T) {
	got := AsDomainModel(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergeVideos_Replace(t *testing.T) {
	existing := []DatabaseVideo{testVideo("a"), testVideo("b"), testVideo("c")}

	got := mergeVideos(existing, []DatabaseVideo{testVideo("c"), testVideo("a")}, WriteReplace)

	assert.Equal(t, []string{testVideo("c").URL, testVideo("a").URL}, urls(got))
}

func TestMergeVideos_ReplaceWithEmptyBatchClearsTable(t *testing.T) {
	got := mergeVideos([]DatabaseVideo{testVideo("a")}, nil, WriteReplace)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergeVideos_UpsertKeepsPositionAndAppends(t *testing.T) {
	existing := []DatabaseVideo{testVideo("a"), testVideo("b"), testVideo("c")}
	changedB := testVideo("b")
	changedB.Title = "B, revised"

	got := mergeVideos(existing, []DatabaseVideo{testVideo("d"), changedB}, WriteUpsert)

	assert.Equal(t, urls([]DatabaseVideo{testVideo("a"), testVideo("b"), testVideo("c"), testVideo("d")}), urls(got))
	assert.Equal(t, "B, revised", got[1].Title)
	// existing is untouched
	assert.Equal(t, "Video b", existing[1].Title)
}

func TestMergeVideos_DuplicateInBatch(t *testing.T) {
	first := testVideo("a")
	last := testVideo("a")
	last.Title = "last wins"

	got := mergeVideos(nil, []DatabaseVideo{first, testVideo("b"), last}, WriteReplace)

	require.Len(t, got, 2)
	assert.Equal(t, first.URL, got[0].URL)
	assert.Equal(t, "last wins", got[0].Title)
}

func TestValidateVideos(t *testing.T) {
	v := validator.New()

	assert.NoError(t, validateVideos(v, []DatabaseVideo{testVideo("a")}))

	noThumb := testVideo("b")
	noThumb.Thumbnail = ""
	assert.NoError(t, validateVideos(v, []DatabaseVideo{noThumb}))

	badURL := testVideo("c")
	badURL.URL = "not a url"
	err := validateVideos(v, []DatabaseVideo{testVideo("a"), badURL})
	assert.ErrorIs(t, err, ErrInvalidVideo)
	assert.Contains(t, err.Error(), "index 1")

	noTitle := testVideo("d")
	noTitle.Title = ""
	assert.ErrorIs(t, validateVideos(v, []DatabaseVideo{noTitle}), ErrInvalidVideo)
}
