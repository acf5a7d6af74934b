package assets

import (
	"testing"

	"github.com/forgeworks/botsmith/internal/draft"
	"github.com/stretchr/testify/assert"
)

func TestPreviewURL(t *testing.T) {
	tests := []struct {
		name       string
		asset      draft.Asset
		baseOrigin string
		want       string
		wantOK     bool
	}{
		{
			name:       "absolute URL passes through",
			asset:      draft.RemoteAsset("https://cdn.example.com/logo.png"),
			baseOrigin: "https://records.example.com",
			want:       "https://cdn.example.com/logo.png",
			wantOK:     true,
		},
		{
			name:       "relative resolved against base origin",
			asset:      draft.RemoteAsset("uploads/logo.png"),
			baseOrigin: "https://records.example.com",
			want:       "https://records.example.com/uploads/logo.png",
			wantOK:     true,
		},
		{
			name:       "duplicate separators collapsed",
			asset:      draft.RemoteAsset("//uploads//logo.png"),
			baseOrigin: "https://records.example.com/",
			want:       "https://records.example.com/uploads/logo.png",
			wantOK:     true,
		},
		{
			name:       "base origin with path",
			asset:      draft.RemoteAsset("logo.png"),
			baseOrigin: "https://records.example.com/assets",
			want:       "https://records.example.com/assets/logo.png",
			wantOK:     true,
		},
		{
			name:       "no base origin collapses only",
			asset:      draft.RemoteAsset("/uploads//logo.png"),
			baseOrigin: "",
			want:       "/uploads/logo.png",
			wantOK:     true,
		},
		{
			name:   "empty asset has no handle",
			asset:  draft.Asset{},
			wantOK: false,
		},
		{
			name:   "local-pending has no URL handle",
			asset:  draft.LocalAsset("logo.png", []byte{1}),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PreviewURL(tt.asset, tt.baseOrigin)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// A remote reference must survive the preview/save round trip unchanged,
// otherwise a no-op edit would look like a new upload to the server.
func TestRemoteReferenceRoundTrip(t *testing.T) {
	ref := "/uploads/logo.png"
	a := draft.RemoteAsset(ref)

	_, ok := PreviewURL(a, "https://records.example.com")
	assert.True(t, ok)

	payload, present := ForSave(a)
	assert.True(t, present)
	assert.Equal(t, ref, payload.Reference)
	assert.False(t, payload.IsUpload())
}

func TestForSave(t *testing.T) {
	local, present := ForSave(draft.LocalAsset("logo.png", []byte{1, 2}))
	assert.True(t, present)
	assert.True(t, local.IsUpload())
	assert.Equal(t, "logo.png", local.Filename)
	assert.Empty(t, local.Reference, "a binary must never be sent as a fabricated reference")

	remote, present := ForSave(draft.RemoteAsset("/uploads/x.png"))
	assert.True(t, present)
	assert.False(t, remote.IsUpload())
	assert.Equal(t, "/uploads/x.png", remote.Reference)

	_, present = ForSave(draft.Asset{})
	assert.False(t, present, "empty asset must be absent from the payload")
}

func TestCheckSelection(t *testing.T) {
	assert.NoError(t, CheckSelection("logo.png", 100, KindImage, 1024))
	assert.NoError(t, CheckSelection("photo.JPEG", 100, KindImage, 1024))
	assert.NoError(t, CheckSelection("guide.pdf", 100, KindDocument, 1024))
	assert.NoError(t, CheckSelection("data.csv", 100, KindCSV, 1024))

	assert.ErrorIs(t, CheckSelection("script.exe", 100, KindImage, 1024), ErrUnsupportedType)
	assert.ErrorIs(t, CheckSelection("data.csv", 100, KindImage, 1024), ErrUnsupportedType)
	assert.ErrorIs(t, CheckSelection("logo.png", 2048, KindImage, 1024), ErrTooLarge)

	// No cap configured means size is unchecked.
	assert.NoError(t, CheckSelection("logo.png", 1<<30, KindImage, 0))
}
