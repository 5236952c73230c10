// Package tiledbindex exports the frame headers of a recording into a
// dense TileDB array alongside the flat .aris file, so a fleet of
// recordings can be queried by frame attribute without reading every file
// in full. Schema attributes are built from FrameRecord's `tiledb` struct
// tags, read with stagparser.
package tiledbindex

import (
	"errors"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"

	aris "github.com/soundmetrics/aris-go"
)

var ErrCreateSchema = errors.New("tiledbindex: error creating array schema")
var ErrCreateAttr = errors.New("tiledbindex: error creating attribute")

// FrameRecord is the subset of a frame header exported as TileDB
// attributes, one cell per frame, dimensioned by FrameIndex.
type FrameRecord struct {
	FrameTime         int64   `tiledb:"dtype=int64,ftype=attr"`
	SonarSerialNumber uint32  `tiledb:"dtype=uint32,ftype=attr"`
	PingMode          uint32  `tiledb:"dtype=uint32,ftype=attr"`
	Frequency         uint32  `tiledb:"dtype=uint32,ftype=attr"`
	SamplesPerBeam    uint32  `tiledb:"dtype=uint32,ftype=attr"`
	FrameRate         float32 `tiledb:"dtype=float32,ftype=attr"`
	SoundSpeed        float32 `tiledb:"dtype=float32,ftype=attr"`
	Depth             float32 `tiledb:"dtype=float32,ftype=attr"`
	Heading           float32 `tiledb:"dtype=float32,ftype=attr"`
	Latitude          float64 `tiledb:"dtype=float64,ftype=attr"`
	Longitude         float64 `tiledb:"dtype=float64,ftype=attr"`
}

// FromFrameHeader narrows a full on-disk frame header to the fields this
// index tracks.
func FromFrameHeader(h *aris.FrameHeader) FrameRecord {
	return FrameRecord{
		FrameTime:         h.FrameTime,
		SonarSerialNumber: h.SonarSerialNumber,
		PingMode:          h.PingMode,
		Frequency:         h.Frequency,
		SamplesPerBeam:    h.SamplesPerBeam,
		FrameRate:         h.FrameRate,
		SoundSpeed:        h.SoundSpeed,
		Depth:             h.Depth,
		Heading:           h.Heading,
		Latitude:          h.Latitude,
		Longitude:         h.Longitude,
	}
}

// BuildSchema constructs a dense TILEDB_DENSE array schema with one
// FRAME_INDEX dimension spanning [0, maxFrames) and one attribute per
// exported FrameRecord field, compressed with Zstandard.
func BuildSchema(ctx *tiledb.Context, maxFrames uint64) (*tiledb.ArraySchema, error) {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	defer domain.Free()

	tileExtent := maxFrames
	if tileExtent > 10000 {
		tileExtent = 10000
	}

	dim, err := tiledb.NewDimension(ctx, "FRAME_INDEX", tiledb.TILEDB_UINT64, []uint64{0, maxFrames - 1}, tileExtent)
	if err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	defer dim.Free()

	if err := domain.AddDimensions(dim); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}

	if err := schema.SetDomain(domain); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}

	if err := addAttributes(&FrameRecord{}, schema, ctx); err != nil {
		return nil, errors.Join(ErrCreateSchema, err)
	}

	return schema, nil
}

// addAttributes walks t's exported fields, reads each one's `tiledb` tag
// via stagparser, and adds a matching zstd-compressed TileDB attribute to
// schema.
func addAttributes(t any, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	defs, err := stgpsr.ParseStruct(t, "tiledb")
	if err != nil {
		return errors.Join(ErrCreateAttr, err)
	}

	values := reflect.ValueOf(t).Elem()
	types := values.Type()

	for i := 0; i < values.NumField(); i++ {
		name := types.Field(i).Name

		fieldDefs := defs[name]
		var dtypeDef stgpsr.Definition
		var found bool
		for _, d := range fieldDefs {
			if d.Name() == "dtype" {
				dtypeDef = d
				found = true
				break
			}
		}
		if !found {
			return errors.Join(ErrCreateAttr, errors.New("dtype tag not found for "+name))
		}

		dtypeVal, _ := dtypeDef.Attribute("dtype")
		dtype, err := tiledbDatatype(dtypeVal.(string))
		if err != nil {
			return errors.Join(ErrCreateAttr, err)
		}

		attr, err := tiledb.NewAttribute(ctx, name, dtype)
		if err != nil {
			return errors.Join(ErrCreateAttr, err)
		}

		filterList, err := tiledb.NewFilterList(ctx)
		if err != nil {
			return errors.Join(ErrCreateAttr, err)
		}
		filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
		if err != nil {
			return errors.Join(ErrCreateAttr, err)
		}
		if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, int32(16)); err != nil {
			return errors.Join(ErrCreateAttr, err)
		}
		if err := filterList.AddFilter(filt); err != nil {
			return errors.Join(ErrCreateAttr, err)
		}
		if err := attr.SetFilterList(filterList); err != nil {
			return errors.Join(ErrCreateAttr, err)
		}

		if err := schema.AddAttributes(attr); err != nil {
			return errors.Join(ErrCreateAttr, err)
		}
	}

	return nil
}

var ErrWriteIndex = errors.New("tiledbindex: error writing array")

// WriteIndex creates a dense array at arrayURI (overwriting none; the
// caller is expected to pass a fresh URI per recording) and writes one
// cell per record in records, in order, to dimension FRAME_INDEX.
func WriteIndex(ctx *tiledb.Context, arrayURI string, records []FrameRecord) error {
	schema, err := BuildSchema(ctx, uint64(len(records)))
	if err != nil {
		return errors.Join(ErrWriteIndex, err)
	}

	if err := tiledb.CreateArray(ctx, arrayURI, schema); err != nil {
		return errors.Join(ErrWriteIndex, err)
	}

	array, err := tiledb.NewArray(ctx, arrayURI)
	if err != nil {
		return errors.Join(ErrWriteIndex, err)
	}
	defer array.Free()

	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(ErrWriteIndex, err)
	}
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return errors.Join(ErrWriteIndex, err)
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrWriteIndex, err)
	}

	n := len(records)
	frameTime := make([]int64, n)
	serial := make([]uint32, n)
	pingMode := make([]uint32, n)
	frequency := make([]uint32, n)
	samplesPerBeam := make([]uint32, n)
	frameRate := make([]float32, n)
	soundSpeed := make([]float32, n)
	depth := make([]float32, n)
	heading := make([]float32, n)
	latitude := make([]float64, n)
	longitude := make([]float64, n)

	for i, r := range records {
		frameTime[i] = r.FrameTime
		serial[i] = r.SonarSerialNumber
		pingMode[i] = r.PingMode
		frequency[i] = r.Frequency
		samplesPerBeam[i] = r.SamplesPerBeam
		frameRate[i] = r.FrameRate
		soundSpeed[i] = r.SoundSpeed
		depth[i] = r.Depth
		heading[i] = r.Heading
		latitude[i] = r.Latitude
		longitude[i] = r.Longitude
	}

	buffers := []struct {
		name string
		data any
	}{
		{"FrameTime", frameTime},
		{"SonarSerialNumber", serial},
		{"PingMode", pingMode},
		{"Frequency", frequency},
		{"SamplesPerBeam", samplesPerBeam},
		{"FrameRate", frameRate},
		{"SoundSpeed", soundSpeed},
		{"Depth", depth},
		{"Heading", heading},
		{"Latitude", latitude},
		{"Longitude", longitude},
	}
	for _, b := range buffers {
		if _, err := query.SetDataBuffer(b.name, b.data); err != nil {
			return errors.Join(ErrWriteIndex, err)
		}
	}

	if err := query.Submit(); err != nil {
		return errors.Join(ErrWriteIndex, err)
	}
	return query.Finalize()
}

func tiledbDatatype(name string) (tiledb.Datatype, error) {
	switch name {
	case "int32":
		return tiledb.TILEDB_INT32, nil
	case "uint32":
		return tiledb.TILEDB_UINT32, nil
	case "int64":
		return tiledb.TILEDB_INT64, nil
	case "uint64":
		return tiledb.TILEDB_UINT64, nil
	case "float32":
		return tiledb.TILEDB_FLOAT32, nil
	case "float64":
		return tiledb.TILEDB_FLOAT64, nil
	default:
		return 0, errors.New("tiledbindex: unsupported dtype " + name)
	}
}
