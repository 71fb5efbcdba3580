package boundary_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EmpoweredVote/constituency-core/internal/boundary"
	"github.com/EmpoweredVote/constituency-core/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	acKeys = config.PropertyKeys{State: config.DefaultStateKeys, Name: config.DefaultAssemblyNameKeys}
	pcKeys = config.PropertyKeys{State: config.DefaultStateKeys, Name: config.DefaultParliamentaryKeys}
)

// square returns a closed GeoJSON ring for the given lng/lat box.
func square(minLng, minLat, maxLng, maxLat float64) string {
	return fmt.Sprintf("[[%v,%v],[%v,%v],[%v,%v],[%v,%v],[%v,%v]]",
		minLng, minLat, maxLng, minLat, maxLng, maxLat, minLng, maxLat, minLng, minLat)
}

func polygonFeature(props, rings string) string {
	return fmt.Sprintf(`{"type":"Feature","properties":%s,"geometry":{"type":"Polygon","coordinates":[%s]}}`, props, rings)
}

func collection(features ...string) []byte {
	return []byte(`{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`)
}

// odishaDataset mirrors the Kandhamal scenario: one assembly seat carrying a
// reservation suffix and a neighbouring seat, plus one parliamentary seat.
func odishaDataset(t *testing.T) *boundary.Dataset {
	t.Helper()

	ac, err := boundary.Parse(boundary.Assembly, collection(
		polygonFeature(`{"ST_NAME":"Odisha","AC_NAME":"Kandhamal SC"}`, square(84.5, 20.5, 85.5, 21.5)),
		polygonFeature(`{"ST_NAME":"Odisha","AC_NAME":"Phulbani"}`, square(85.5, 20.5, 86.5, 21.5)),
	), acKeys)
	require.NoError(t, err)

	pc, err := boundary.Parse(boundary.Parliamentary, collection(
		polygonFeature(`{"st_name":"Odisha","pc_name":"Kandhamal"}`, square(84.0, 20.0, 86.0, 22.0)),
	), pcKeys)
	require.NoError(t, err)

	return &boundary.Dataset{Assembly: ac, Parliamentary: pc}
}

func TestLocate_PointStrictlyInside(t *testing.T) {
	ds := odishaDataset(t)

	m := ds.Locate(20.95, 85.10)
	require.NotNil(t, m.Assembly)
	require.NotNil(t, m.Parliamentary)

	assert.Equal(t, "Odisha", m.Assembly.State)
	assert.Equal(t, "Kandhamal SC", m.Assembly.Name)
	assert.Equal(t, "Kandhamal", boundary.NormalizeName(m.Assembly.Name))
	assert.Equal(t, "Kandhamal", m.Parliamentary.Name)
}

func TestLocate_CollectionsAreIndependent(t *testing.T) {
	ds := odishaDataset(t)

	// Inside the parliamentary seat, outside every assembly seat.
	m := ds.Locate(21.8, 84.2)
	assert.Nil(t, m.Assembly)
	require.NotNil(t, m.Parliamentary)
	assert.Equal(t, "Kandhamal", m.Parliamentary.Name)
}

func TestLocate_NotContained(t *testing.T) {
	ds := odishaDataset(t)

	m := ds.Locate(10.0, 70.0)
	assert.True(t, m.Empty())
}

func TestLocate_InvalidCoordinate(t *testing.T) {
	ds := odishaDataset(t)

	assert.True(t, ds.Locate(120, 85.1).Empty())
	assert.True(t, ds.Locate(20.9, -200).Empty())
}

func TestLocate_NilDatasetAndMissingCollection(t *testing.T) {
	var ds *boundary.Dataset
	assert.True(t, ds.Locate(20.95, 85.10).Empty())

	partial := odishaDataset(t)
	partial.Assembly = nil
	m := partial.Locate(20.95, 85.10)
	assert.Nil(t, m.Assembly)
	assert.NotNil(t, m.Parliamentary)
}

func TestLocate_FirstMatchWinsOnOverlap(t *testing.T) {
	ac, err := boundary.Parse(boundary.Assembly, collection(
		polygonFeature(`{"ST_NAME":"Odisha","AC_NAME":"First"}`, square(0, 0, 10, 10)),
		polygonFeature(`{"ST_NAME":"Odisha","AC_NAME":"Second"}`, square(2, 2, 4, 4)),
	), acKeys)
	require.NoError(t, err)

	f, ok := ac.Find(3, 3)
	require.True(t, ok)
	assert.Equal(t, "First", f.Name)
}

func TestLocate_MultiPolygonAnyPart(t *testing.T) {
	mp := fmt.Sprintf(`{"type":"Feature","properties":{"ST_NAME":"Kerala","AC_NAME":"Islands"},`+
		`"geometry":{"type":"MultiPolygon","coordinates":[[%s],[%s]]}}`,
		square(0, 0, 1, 1), square(5, 5, 6, 6))
	ac, err := boundary.Parse(boundary.Assembly, collection(mp), acKeys)
	require.NoError(t, err)

	_, ok := ac.Find(5.5, 5.5)
	assert.True(t, ok, "point in second part")
	_, ok = ac.Find(0.5, 0.5)
	assert.True(t, ok, "point in first part")
	_, ok = ac.Find(3, 3)
	assert.False(t, ok, "point between parts")
}

func TestLocate_PolygonUsesOuterRingOnly(t *testing.T) {
	withHole := polygonFeature(`{"ST_NAME":"Goa","AC_NAME":"Donut"}`,
		square(0, 0, 10, 10)+","+square(4, 4, 6, 6))
	ac, err := boundary.Parse(boundary.Assembly, collection(withHole), acKeys)
	require.NoError(t, err)

	_, ok := ac.Find(5, 5)
	assert.True(t, ok)
}

func TestParse_MissingPropertyFailsLoudly(t *testing.T) {
	_, err := boundary.Parse(boundary.Assembly, collection(
		polygonFeature(`{"ST_NAME":"Odisha","AC_NAME":"Kandhamal"}`, square(0, 0, 1, 1)),
		polygonFeature(`{"ST_NAME":"Odisha"}`, square(1, 1, 2, 2)),
	), acKeys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feature 1")
	assert.Contains(t, err.Error(), "AC_NAME")
}

func TestParse_BlankPropertyFailsLoudly(t *testing.T) {
	_, err := boundary.Parse(boundary.Assembly, collection(
		polygonFeature(`{"ST_NAME":"  ","AC_NAME":"Kandhamal"}`, square(0, 0, 1, 1)),
	), acKeys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state")
}

func TestParse_UnsupportedGeometry(t *testing.T) {
	point := `{"type":"Feature","properties":{"ST_NAME":"Odisha","AC_NAME":"Dot"},"geometry":{"type":"Point","coordinates":[1,1]}}`
	_, err := boundary.Parse(boundary.Assembly, collection(point), acKeys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported geometry")
}

func TestParse_Corrupt(t *testing.T) {
	_, err := boundary.Parse(boundary.Assembly, []byte(`{"type":`), acKeys)
	require.Error(t, err)
}

func TestLoad_PartialFailureKeepsLoadedCollection(t *testing.T) {
	dir := t.TempDir()
	acPath := filepath.Join(dir, "ac.geojson")
	require.NoError(t, os.WriteFile(acPath, collection(
		polygonFeature(`{"ST_NAME":"Odisha","AC_NAME":"Kandhamal SC"}`, square(84.5, 20.5, 85.5, 21.5)),
	), 0o600))

	ds, err := boundary.Load(config.BoundaryConfig{
		AssemblyPath:      acPath,
		ParliamentaryPath: filepath.Join(dir, "missing.geojson"),
		AssemblyKeys:      acKeys,
		ParliamentaryKeys: pcKeys,
	})
	require.Error(t, err)
	require.NotNil(t, ds)
	assert.Equal(t, 1, ds.Assembly.Len())
	assert.Nil(t, ds.Parliamentary)
	assert.Equal(t, acPath, ds.Assembly.Source)
}

func TestLoad_NoPathsConfigured(t *testing.T) {
	ds, err := boundary.Load(config.BoundaryConfig{})
	require.ErrorIs(t, err, boundary.ErrNoPath)
	assert.True(t, ds.Locate(20.95, 85.10).Empty())
}
