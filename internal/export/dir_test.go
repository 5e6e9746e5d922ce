package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdlog/internal/codec"
	"mdlog/internal/schema"
	"mdlog/pkg/exception"
)

func TestReadSymbols(t *testing.T) {
	in := strings.Join([]string{
		"# watch list",
		"",
		"600000.SH,SPDB",
		"  000001  ",
		"#300750",
		"600000",
		"688981.SH",
	}, "\n")

	s, err := ReadSymbols(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"000001", "600000", "688981"}, s.Sorted())
	assert.True(t, s.Has("600000.SH"))
	assert.False(t, s.Has("300750"))
}

func TestLoadSymbolsMissing(t *testing.T) {
	_, err := LoadSymbols(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "MD_ORDER_StockType_600000.SH.csv", OutputName(schema.KindOrder, "600000"))
	assert.Equal(t, "MD_TRANSACTION_StockType_000001.SZ.csv", OutputName(schema.KindTransaction, "000001.SZ"))
	assert.Equal(t, "MD_TICK_StockType_300750.SZ.csv", OutputName(schema.KindTick, "300750"))
}

func TestDir(t *testing.T) {
	data, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	writeFixture(t, data, codec.OrderV2, 300)
	writeFixture(t, data, codec.TransactionV1, 300)

	res, err := Dir(context.Background(), DirConfig{
		DataDir:   data,
		OutputDir: out,
		Symbols:   NewSet("600000", "000001.SZ"),
	})
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Equal(t, []schema.Kind{schema.KindTick}, res.Missing)

	assert.Equal(t, uint64(100), res.Count(schema.KindOrder, "600000"))
	assert.Equal(t, uint64(100), res.Count(schema.KindTransaction, "000001"))
	assert.Equal(t, uint64(100), res.Stats[schema.KindOrder].Unmatched)

	rep, err := VerifyFile(filepath.Join(out, "MD_ORDER_StockType_600000.SH.csv"))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), rep.Lines)
	assert.Zero(t, rep.Bad)
	assert.Zero(t, rep.Backwards)
	assert.Equal(t, map[string]uint64{"600000.SH": 100}, rep.Symbols)
	assert.Equal(t, int64(93000000), rep.FirstTime)

	rep, err = VerifyFile(filepath.Join(out, "MD_TRANSACTION_StockType_000001.SZ.csv"))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), rep.Lines)
	assert.Equal(t, map[string]uint64{"000001.SZ": 100}, rep.Symbols)

	_, err = os.Stat(filepath.Join(out, OutputName(schema.KindTick, "600000")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDirIsolatesFailures(t *testing.T) {
	data, out := t.TempDir(), t.TempDir()
	writeFixture(t, data, codec.OrderV2, 30)
	txn := writeFixture(t, data, codec.TransactionV2, 30)
	require.NoError(t, os.WriteFile(txn, bytes.Repeat([]byte{0xEE}, 128), 0o644))

	res, err := Dir(context.Background(), DirConfig{
		DataDir:   data,
		OutputDir: out,
		Symbols:   NewSet("600000"),
	})
	require.NoError(t, err)
	require.ErrorIs(t, res.Errors[schema.KindTransaction], exception.ErrUnknownMagic)
	require.ErrorIs(t, res.Err(), exception.ErrUnknownMagic)
	assert.Equal(t, uint64(10), res.Count(schema.KindOrder, "600000"))
}

func TestDirConfigValidate(t *testing.T) {
	_, err := Dir(context.Background(), DirConfig{
		DataDir:   t.TempDir(),
		OutputDir: t.TempDir(),
		Symbols:   NewSet("600000"),
		Kinds:     []schema.Kind{schema.KindSnapshot},
	})
	require.ErrorIs(t, err, exception.ErrKindUnsupported)

	_, err = Dir(context.Background(), DirConfig{DataDir: t.TempDir(), OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestVerifyFlagsBadLines(t *testing.T) {
	in := strings.Join([]string{
		string(AppendOrderLine(nil, sampleOrder())),
		`HTSCSecurityID: 600000.SH MDTime: 93000000 DataMultiplePowerOf10: 4`,
		`HTSCSecurityID: "600000.SH" MDTime: 93000000 DataMultiplePowerOf10: 4`,
		`HTSCSecurityID: "600000.SH" MDTime: 93000100`,
	}, "\n")

	rep, err := Verify(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), rep.Lines)
	assert.Equal(t, uint64(2), rep.Bad)
	assert.Equal(t, uint64(2), rep.FirstBad)
	assert.Equal(t, uint64(1), rep.Backwards)
	assert.Equal(t, uint64(2), rep.Symbols["600000.SH"])
}
