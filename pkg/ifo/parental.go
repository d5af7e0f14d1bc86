package ifo

import (
	"github.com/bgrewell/dvd-kit/pkg/consts"
)

// ParentalTable is the parental management information table (PTL_MAIT) of the VMG.
type ParentalTable struct {
	TitleSetCount uint16
	Countries     []ParentalCountry
}

// ParentalCountry holds the masks of one country. Masks[level-1][vts] is the parental id mask applied at
// that level, vts 0 being the video manager itself.
type ParentalCountry struct {
	Code  string
	Masks [consts.PARENTAL_LEVELS][]uint16
}

func decodeParentalTable(r region, sector uint32) (*ParentalTable, error) {
	t, hdr, err := r.tableAtSector(sector)
	if err != nil {
		return nil, err
	}
	// The VTS count lives where other tables keep their reserved word.
	vtsCount := t.u16(2)

	size, err := arraySize(uint64(hdr.Count), consts.PTL_MAIT_COUNTRY_SIZE, r.op)
	if err != nil {
		return nil, err
	}
	srp, err := t.sub(consts.PTL_MAIT_HEADER_SIZE, size)
	if err != nil {
		return nil, err
	}
	perLevel := uint64(vtsCount) + 1
	maskSize, err := arraySize(perLevel*consts.PARENTAL_LEVELS, 2, r.op)
	if err != nil {
		return nil, err
	}

	pt := &ParentalTable{TitleSetCount: vtsCount, Countries: make([]ParentalCountry, hdr.Count)}
	for i := range pt.Countries {
		b := i * consts.PTL_MAIT_COUNTRY_SIZE
		country := ParentalCountry{Code: srp.text(b, 2)}
		masks, err := t.sub(uint64(srp.u16(b+4)), maskSize)
		if err != nil {
			return nil, err
		}
		// Levels are recorded from 8 down to 1.
		for level := 0; level < consts.PARENTAL_LEVELS; level++ {
			row := make([]uint16, perLevel)
			base := (consts.PARENTAL_LEVELS - 1 - level) * int(perLevel) * 2
			for v := range row {
				row[v] = masks.u16(base + v*2)
			}
			country.Masks[level] = row
		}
		pt.Countries[i] = country
	}
	return pt, nil
}
