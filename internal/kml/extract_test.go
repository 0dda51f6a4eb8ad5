package kml_test

import (
	"testing"

	"github.com/UnknownOlympus/trackmap/internal/kml"
	"github.com/UnknownOlympus/trackmap/internal/models"
	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">`

func readDoc(t *testing.T, body string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(kmlHeader+body+`</kml>`))

	return doc
}

func TestExtract(t *testing.T) {
	t.Run("single line string", func(t *testing.T) {
		doc := readDoc(t, `<Document><Placemark><LineString>
			<coordinates>-122.1,37.7,10 -122.2,37.8,20</coordinates>
		</LineString></Placemark></Document>`)

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		assert.Equal(t, []models.Point{
			{Latitude: 37.7, Longitude: -122.1, Altitude: 0},
			{Latitude: 37.8, Longitude: -122.2, Altitude: 0},
		}, points)
	})

	t.Run("placemark without line string contributes nothing", func(t *testing.T) {
		doc := readDoc(t, `<Document>
			<Placemark><Point><coordinates>1,2,3</coordinates></Point></Placemark>
			<Placemark><Polygon><outerBoundaryIs><LinearRing>
				<coordinates>1,2,0 3,4,0 5,6,0 1,2,0</coordinates>
			</LinearRing></outerBoundaryIs></Polygon></Placemark>
		</Document>`)

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("line string without coordinates is skipped", func(t *testing.T) {
		doc := readDoc(t, `<Placemark><LineString><tessellate>1</tessellate></LineString></Placemark>
			<Placemark><LineString><coordinates>5,6,0</coordinates></LineString></Placemark>`)

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		assert.Equal(t, []models.Point{{Latitude: 6, Longitude: 5}}, points)
	})

	t.Run("zero placemarks yields empty track", func(t *testing.T) {
		doc := readDoc(t, `<Document><name>empty</name></Document>`)

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		assert.NotNil(t, points)
		assert.Empty(t, points)
	})

	t.Run("nil document", func(t *testing.T) {
		points, err := kml.Extract(nil)

		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("document order across folder depths", func(t *testing.T) {
		doc := readDoc(t, `<Document>
			<Folder><Folder>
				<Placemark><LineString><coordinates>1,1,0</coordinates></LineString></Placemark>
			</Folder></Folder>
			<Placemark><LineString><coordinates>2,2,0</coordinates></LineString></Placemark>
			<Folder>
				<Placemark><MultiGeometry><LineString><coordinates>3,3,0</coordinates></LineString></MultiGeometry></Placemark>
			</Folder>
		</Document>`)

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		require.Len(t, points, 3)
		assert.InDelta(t, 1.0, points[0].Longitude, 0)
		assert.InDelta(t, 2.0, points[1].Longitude, 0)
		assert.InDelta(t, 3.0, points[2].Longitude, 0)
	})

	t.Run("only the first line string of a placemark is read", func(t *testing.T) {
		doc := readDoc(t, `<Placemark><MultiGeometry>
			<LineString><coordinates>1,1,0 2,2,0</coordinates></LineString>
			<LineString><coordinates>9,9,0</coordinates></LineString>
		</MultiGeometry></Placemark>`)

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		assert.Len(t, points, 2)
	})

	t.Run("prefixed elements are matched by local name", func(t *testing.T) {
		doc := etree.NewDocument()
		require.NoError(t, doc.ReadFromString(`<k:kml xmlns:k="http://www.opengis.net/kml/2.2">
			<k:Placemark><k:LineString><k:coordinates>10,20,0</k:coordinates></k:LineString></k:Placemark>
		</k:kml>`))

		points, err := kml.Extract(doc)

		require.NoError(t, err)
		assert.Equal(t, []models.Point{{Latitude: 20, Longitude: 10}}, points)
	})

	t.Run("malformed tuple fails the whole document", func(t *testing.T) {
		doc := readDoc(t, `<Placemark><LineString><coordinates>1,1,0</coordinates></LineString></Placemark>
			<Placemark><LineString><coordinates>1,1</coordinates></LineString></Placemark>`)

		points, err := kml.Extract(doc)

		require.ErrorIs(t, err, kml.ErrCoordinateFormat)
		assert.Nil(t, points)
	})

	t.Run("extraction is idempotent", func(t *testing.T) {
		doc := readDoc(t, `<Placemark><LineString><coordinates>
			-0.1,51.5,0 -0.2,51.6,0 -0.3,51.7,0
		</coordinates></LineString></Placemark>`)

		first, err := kml.Extract(doc)
		require.NoError(t, err)
		second, err := kml.Extract(doc)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []models.Point
		wantErr error
	}{
		{
			name: "elevation is dropped",
			text: "30.5234,50.4501,187.4",
			want: []models.Point{{Latitude: 50.4501, Longitude: 30.5234, Altitude: 0}},
		},
		{
			name: "mixed whitespace separators",
			text: "\n\t1.5,2.5,0\n\n  3.5,4.5,0\t",
			want: []models.Point{{Latitude: 2.5, Longitude: 1.5}, {Latitude: 4.5, Longitude: 3.5}},
		},
		{
			name: "empty text",
			text: "   ",
			want: []models.Point{},
		},
		{
			name:    "two fields",
			text:    "1,2",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "four fields",
			text:    "1,2,3,4",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "non numeric longitude",
			text:    "east,2,0",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "nan longitude",
			text:    "nan,1,0",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "infinite latitude",
			text:    "1,inf,0",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "negative infinity",
			text:    "-Infinity,1,0",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "non numeric latitude",
			text:    "1,north,0",
			wantErr: kml.ErrCoordinateFormat,
		},
		{
			name:    "spaces inside a tuple",
			text:    "1, 2, 3",
			wantErr: kml.ErrCoordinateFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := kml.ParseCoordinates(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
