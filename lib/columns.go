package lib

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// ColumnNames lists the table columns in serialization order.
var ColumnNames = [...]string{
	"subnet", "netmask", "range", "useable", "hosts", "remark", "divide", "join",
}

// Columns holds the visibility of each column, indexed like ColumnNames.
type Columns [len(ColumnNames)]bool

// AllColumns has every column visible.
var AllColumns = Columns{true, true, true, true, true, true, true, true}

// ColumnIndex returns the position of a column name in ColumnNames.
func ColumnIndex(name string) (int, bool) {
	for i, n := range ColumnNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Visible tells whether the named column is shown. Unknown names are not.
func (c Columns) Visible(name string) bool {
	i, ok := ColumnIndex(name)
	return ok && c[i]
}

// Set changes the visibility of the named column.
func (c *Columns) Set(name string, visible bool) error {
	i, ok := ColumnIndex(name)
	if !ok {
		return errors.Errorf("unknown column '%s'", name)
	}
	c[i] = visible
	return nil
}

func (c Columns) String() string {
	return EncodeColumns(c)
}

// EncodeColumns packs the flags into one byte, the first column in the most
// significant bit, and renders it as two hex digits.
func EncodeColumns(c Columns) string {
	var b uint8
	for i, visible := range c {
		if visible {
			b |= 1 << uint(len(c)-1-i)
		}
	}
	return fmt.Sprintf("%02x", b)
}

// DecodeColumns is the inverse of EncodeColumns.
func DecodeColumns(s string) (Columns, error) {
	var c Columns
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return c, errors.Wrapf(err, "invalid column flags '%s'", s)
	}
	binary := fmt.Sprintf("%08b", v)
	for i := range c {
		c[i] = binary[i] == '1'
	}
	return c, nil
}
