package source_test

import (
	"context"
	"testing"

	"github.com/UnknownOlympus/trackmap/internal/source"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secondKML = `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark><LineString>
<coordinates>1,2,0</coordinates></LineString></Placemark></kml>`

func TestKMZReader_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("first kml entry is used and extracted", func(t *testing.T) {
		fs, repo := newMemRepo(t, map[string][]byte{
			"/tracks/ride.kmz": buildKMZ(t,
				zipEntry{name: "files/icon.png", body: "png"},
				zipEntry{name: "doc.kml", body: sampleKML},
				zipEntry{name: "other.KML", body: secondKML},
			),
		})
		reader := source.NewKMZReader(repo, true, testLogger())

		track, err := reader.Read(ctx, "/tracks/ride.kmz")

		require.NoError(t, err)
		assert.Equal(t, "/tracks/ride.kmz", track.SourceName)
		assert.Equal(t, "kmz", track.Format)
		assert.Len(t, track.Points, 3)

		extracted, err := afero.ReadFile(fs, "/tracks/doc.kml")
		require.NoError(t, err)
		assert.Equal(t, sampleKML, string(extracted))
		exists, err := afero.Exists(fs, "/tracks/other.KML")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("upper case extension and nested entry", func(t *testing.T) {
		fs, repo := newMemRepo(t, map[string][]byte{
			"/tracks/ride.kmz": buildKMZ(t, zipEntry{name: "data/Track.KML", body: secondKML}),
		})
		reader := source.NewKMZReader(repo, true, testLogger())

		track, err := reader.Read(ctx, "/tracks/ride.kmz")

		require.NoError(t, err)
		assert.Len(t, track.Points, 1)
		exists, err := afero.Exists(fs, "/tracks/data/Track.KML")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("extraction disabled leaves directory untouched", func(t *testing.T) {
		fs, repo := newMemRepo(t, map[string][]byte{
			"/tracks/ride.kmz": buildKMZ(t, zipEntry{name: "doc.kml", body: sampleKML}),
		})
		reader := source.NewKMZReader(repo, false, testLogger())

		track, err := reader.Read(ctx, "/tracks/ride.kmz")

		require.NoError(t, err)
		assert.Len(t, track.Points, 3)
		exists, err := afero.Exists(fs, "/tracks/doc.kml")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("archive without kml entry", func(t *testing.T) {
		_, repo := newMemRepo(t, map[string][]byte{
			"/tracks/photos.kmz": buildKMZ(t, zipEntry{name: "a.jpg", body: "jpg"}),
		})
		reader := source.NewKMZReader(repo, true, testLogger())

		track, err := reader.Read(ctx, "/tracks/photos.kmz")

		require.Nil(t, track)
		require.ErrorIs(t, err, source.ErrNoKMLInArchive)
	})

	t.Run("not a zip archive", func(t *testing.T) {
		_, repo := newMemRepo(t, map[string][]byte{
			"/tracks/broken.kmz": []byte("definitely not a zip"),
		})
		reader := source.NewKMZReader(repo, true, testLogger())

		_, err := reader.Read(ctx, "/tracks/broken.kmz")

		require.ErrorIs(t, err, source.ErrCorruptArchive)
	})

	t.Run("entry escaping the directory", func(t *testing.T) {
		fs, repo := newMemRepo(t, map[string][]byte{
			"/tracks/evil.kmz": buildKMZ(t, zipEntry{name: "../evil.kml", body: sampleKML}),
		})
		reader := source.NewKMZReader(repo, true, testLogger())

		_, err := reader.Read(ctx, "/tracks/evil.kmz")

		require.ErrorIs(t, err, source.ErrCorruptArchive)
		exists, existsErr := afero.Exists(fs, "/evil.kml")
		require.NoError(t, existsErr)
		assert.False(t, exists)
	})

	t.Run("malformed kml inside archive", func(t *testing.T) {
		_, repo := newMemRepo(t, map[string][]byte{
			"/tracks/bad.kmz": buildKMZ(t, zipEntry{name: "doc.kml", body: "<kml><Placemark>"}),
		})
		reader := source.NewKMZReader(repo, false, testLogger())

		_, err := reader.Read(ctx, "/tracks/bad.kmz")

		require.ErrorIs(t, err, source.ErrMalformedDocument)
		assert.Contains(t, err.Error(), "doc.kml")
	})
}
