// Package areatest provides a small boundary dataset for tests.
package areatest

import "github.com/sells-group/district-map/internal/area"

// Codes in the fixture dataset.
const (
	Cheongun = "1111051500" // 청운효자동, 종로구
	Sajik    = "1111053000" // 사직동, 종로구
	Sogong   = "1114052000" // 소공동, 중구
	Jongno   = "종로구"
	Junggu   = "중구"
)

// Rect returns an open rectangular path spanning the given corners.
func Rect(south, west, north, east float64) []area.LatLng {
	return []area.LatLng{
		{Lat: south, Lng: west},
		{Lat: north, Lng: west},
		{Lat: north, Lng: east},
		{Lat: south, Lng: east},
	}
}

// Dataset returns three dong units inside two gu units.
func Dataset() *area.Dataset {
	dong := []*area.Feature{
		{Code: Cheongun, Name: "청운효자동", Granularity: area.Dong, Path: Rect(37.585, 126.960, 37.600, 126.975)},
		{Code: Sajik, Name: "사직동", Granularity: area.Dong, Path: Rect(37.570, 126.960, 37.585, 126.975)},
		{Code: Sogong, Name: "소공동", Granularity: area.Dong, Path: Rect(37.558, 126.975, 37.568, 126.985)},
	}
	gu := []*area.Feature{
		{Code: Jongno, Name: "서울특별시 종로구", Granularity: area.Gu, Path: Rect(37.570, 126.950, 37.600, 127.000)},
		{Code: Junggu, Name: "서울특별시 중구", Granularity: area.Gu, Path: Rect(37.550, 126.970, 37.570, 127.010)},
	}

	ds, err := area.NewDataset(dong, gu)
	if err != nil {
		panic(err)
	}
	return ds
}
