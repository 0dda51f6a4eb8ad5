package source_test

import (
	"archive/zip"
	"bytes"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/trackmap/internal/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const sampleKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Placemark>
      <name>Morning ride</name>
      <LineString>
        <coordinates>-122.1,37.7,10 -122.2,37.8,20 -122.3,37.9,30</coordinates>
      </LineString>
    </Placemark>
  </Document>
</kml>`

type zipEntry struct {
	name string
	body string
}

func buildKMZ(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := writer.Create(entry.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entry.body))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return buf.Bytes()
}

func newMemRepo(t *testing.T, files map[string][]byte) (afero.Fs, *repository.Repository) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	}

	return fs, repository.NewRepository(fs, slog.Default())
}
