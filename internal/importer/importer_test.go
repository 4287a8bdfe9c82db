package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "a,1,2,3\nb,4,5,6\n", ','},
		{"semicolon", "a;1;2;3\nb;4;5;6\n", ';'},
		{"tab", "a\t1\t2\t3\nb\t4\t5\t6\n", '\t'},
		{"pipe", "a|1|2|3\nb|4|5|6\n", '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCSVDelimiter([]byte(tt.data)))
		})
	}
}

func TestDetectColumns_HeaderAliases(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Name", "W", "H", "Qty"})
	require.True(t, hasHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Width)
	assert.Equal(t, 2, mapping.Height)
	assert.Equal(t, 3, mapping.Quantity)
}

func TestDetectColumns_NoHeaderFallsBackPositional(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"shelf", "4", "2", "3"})
	assert.False(t, hasHeader)
	assert.Equal(t, ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}, mapping)
}

func TestImportCSVFromReader_ParsesProducts(t *testing.T) {
	csv := "label,width,height,quantity\nshelf,4,2,3\ndoor,5,5,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	require.Empty(t, result.Errors)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "shelf", result.Products[0].Label)
	assert.Equal(t, 4, result.Products[0].Width)
	assert.Equal(t, 2, result.Products[0].Height)
	assert.Equal(t, 3, result.Products[0].Quantity)
	assert.NotEmpty(t, result.Products[0].ID)
}

func TestImportCSVFromReader_RowErrorsAreCollected(t *testing.T) {
	csv := "label,width,height,quantity\nok,4,2,3\nbad,x,2,3\nnegative,4,-2,3\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	assert.Len(t, result.Products, 1)
	assert.Len(t, result.Errors, 2)
}

func TestImportCSVFromReader_FractionalDimensionsRejected(t *testing.T) {
	csv := "label,width,height,quantity\npanel,4.5,2,3\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	assert.Empty(t, result.Products)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "whole cells")
}

func TestImportCSVFromReader_SkipsEmptyRows(t *testing.T) {
	csv := "label,width,height,quantity\n\nshelf,4,2,3\n,,,\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	assert.Len(t, result.Products, 1)
	assert.Empty(t, result.Errors)
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	csv := "label,width,quantity\nshelf,4,3\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',')

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Height")
	assert.Empty(t, result.Products)
}

func TestImportCSV_MissingFile(t *testing.T) {
	result := ImportCSV("does-not-exist.csv")
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Products)
}

func TestParseStockRows(t *testing.T) {
	rows := [][]string{
		{"Width", "Height", "Quantity"},
		{"10", "10", "2"},
		{"20", "5", ""},
		{"bad", "5", "1"},
	}

	specs, warnings := parseStockRows(rows)
	require.Len(t, specs, 2)
	assert.Equal(t, 10, specs[0].Width)
	assert.Equal(t, 2, specs[0].Quantity)
	assert.Equal(t, 1, specs[1].Quantity, "missing quantity defaults to one")
	assert.Len(t, warnings, 1)
}
