package fitsfile

import (
	"fmt"

	"github.com/astrogo/fitsio"

	"github.jpl.nasa.gov/bdube/ndfits/ndarray"
)

// maxCardString is the longest string value emitted into a header card.
// Longer values are silently truncated; FITS cards are 80 characters wide
// and truncation is the documented behavior, not an error.
const maxCardString = 80

// attrCard converts one attribute into a header card.  The second return
// is false when the attribute carries no value (AttrUndefined) and should
// be skipped without emitting a card.
func attrCard(a ndarray.Attr) (fitsio.Card, bool, error) {
	card := fitsio.Card{Name: a.Name, Comment: a.Description}
	switch a.Type {
	case ndarray.AttrInt8:
		card.Value = int(int8(a.Ival))
	case ndarray.AttrUInt8:
		card.Value = int(uint8(a.Ival))
	case ndarray.AttrInt16:
		card.Value = int(int16(a.Ival))
	case ndarray.AttrUInt16:
		card.Value = int(uint16(a.Ival))
	case ndarray.AttrInt32:
		card.Value = int(int32(a.Ival))
	case ndarray.AttrUInt32:
		card.Value = int(uint32(a.Ival))
	case ndarray.AttrFloat32:
		card.Value = float64(float32(a.Fval))
	case ndarray.AttrFloat64:
		card.Value = a.Fval
	case ndarray.AttrString:
		s := a.Sval
		if len(s) > maxCardString {
			s = s[:maxCardString]
		}
		card.Value = s
	case ndarray.AttrUndefined:
		return fitsio.Card{}, false, nil
	default:
		return fitsio.Card{}, false, fmt.Errorf("%w: attribute %q has type %d", ErrUnsupportedAttributeType, a.Name, a.Type)
	}
	return card, true, nil
}

// attrCards converts an ordered attribute collection to header cards,
// preserving order and skipping undefined entries.  The first conversion
// failure aborts the remainder of the pass.  Names are passed through
// as-is; duplicates are left for the format layer to reject or overwrite.
func attrCards(attrs []ndarray.Attr) ([]fitsio.Card, error) {
	cards := make([]fitsio.Card, 0, len(attrs))
	for _, a := range attrs {
		card, ok, err := attrCard(a)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}
