package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/district-map/internal/area/areatest"
	"github.com/sells-group/district-map/internal/mapsession"
	"github.com/sells-group/district-map/internal/navigator"
)

func navigate(t *testing.T, plan navigatePlan) navigateReport {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, runNavigate(context.Background(), &buf, areatest.Dataset(), mapsession.DefaultOptions(), plan))

	var rep navigateReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))
	return rep
}

func TestRunNavigate_Gu(t *testing.T) {
	rep := navigate(t, navigatePlan{Query: navigator.Query{Type: navigator.QueryGu, Data: areatest.Jongno}})

	assert.True(t, rep.Found)
	assert.True(t, rep.Selected)
	assert.Equal(t, 7, rep.Session.Level)
	require.NotNil(t, rep.Session.Selected)
	assert.Equal(t, areatest.Jongno, rep.Session.Selected.Code)
	assert.Equal(t, "gu:"+areatest.Jongno, rep.Session.Pinned)
}

func TestRunNavigate_Miss(t *testing.T) {
	rep := navigate(t, navigatePlan{Query: navigator.Query{Type: navigator.QueryDong, Data: "0000000000"}})

	assert.False(t, rep.Found)
	assert.Nil(t, rep.Session.Selected)
	assert.Equal(t, 6, rep.Session.Level)
}

func TestRunNavigate_Compare(t *testing.T) {
	base := navigator.Query{Type: navigator.QueryDong, Data: areatest.Cheongun}
	rep := navigate(t, navigatePlan{
		Base:    &base,
		Compare: true,
		Query:   navigator.Query{Type: navigator.QueryDong, Data: areatest.Sogong},
	})

	assert.True(t, rep.Selected)
	assert.Equal(t, "compare", rep.Session.Mode)
	require.NotNil(t, rep.Session.Comparison)
	assert.Equal(t, areatest.Cheongun, rep.Session.Comparison.Base.Code)
	require.NotNil(t, rep.Session.Comparison.Compare)
	assert.Equal(t, areatest.Sogong, rep.Session.Comparison.Compare.Code)
}

func TestRunNavigate_BaseNotFound(t *testing.T) {
	base := navigator.Query{Type: navigator.QueryGu, Data: "강남구"}
	err := runNavigate(context.Background(), &bytes.Buffer{}, areatest.Dataset(), mapsession.DefaultOptions(), navigatePlan{
		Base:  &base,
		Query: navigator.Query{Type: navigator.QueryGu, Data: areatest.Jongno},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunNavigate_UnknownType(t *testing.T) {
	err := runNavigate(context.Background(), &bytes.Buffer{}, areatest.Dataset(), mapsession.DefaultOptions(), navigatePlan{
		Query: navigator.Query{Type: "siCode", Data: "x"},
	})
	assert.ErrorIs(t, err, navigator.ErrUnknownQueryType)
}

func TestRunNavigate_Shapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runNavigate(context.Background(), &buf, areatest.Dataset(), mapsession.DefaultOptions(), navigatePlan{
		Query:  navigator.Query{Type: navigator.QueryGu, Data: areatest.Junggu},
		Shapes: true,
	}))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID string `json:"id"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)

	var ids []string
	for _, f := range fc.Features {
		ids = append(ids, f.ID)
	}
	assert.Contains(t, ids, "gu:"+areatest.Junggu)
	assert.Contains(t, ids, "bg:"+areatest.Junggu)
}

func TestParseQueryArg(t *testing.T) {
	q, err := parseQueryArg("guCode:종로구")
	require.NoError(t, err)
	assert.Equal(t, navigator.Query{Type: navigator.QueryGu, Data: "종로구"}, q)

	_, err = parseQueryArg("종로구")
	assert.Error(t, err)

	_, err = parseQueryArg("siCode:1")
	assert.ErrorIs(t, err, navigator.ErrUnknownQueryType)
}
