package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// readDump calls fn for every document of a mongodump .bson file. A missing
// file is treated as an empty collection.
func readDump(path string, fn func(bson.Raw) error) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	n := 0
	for {
		doc, err := bson.NewFromIOReader(r)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("%s: document %d: %w", path, n+1, err)
		}
		if err := fn(doc); err != nil {
			return n, fmt.Errorf("%s: document %d: %w", path, n+1, err)
		}
		n++
	}
}

// Mongoose stored the same logical field with whatever BSON type the client
// sent, so numeric and date fields are read loosely.

func rvInt(v bson.RawValue) int64 {
	switch v.Type {
	case bson.TypeInt32:
		return int64(v.Int32())
	case bson.TypeInt64:
		return v.Int64()
	case bson.TypeDouble:
		return int64(v.Double())
	case bson.TypeString:
		n, _ := strconv.ParseInt(strings.TrimSpace(v.StringValue()), 10, 64)
		return n
	}
	return 0
}

func rvFloat(v bson.RawValue) float64 {
	switch v.Type {
	case bson.TypeInt32:
		return float64(v.Int32())
	case bson.TypeInt64:
		return float64(v.Int64())
	case bson.TypeDouble:
		return v.Double()
	case bson.TypeString:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v.StringValue()), 64)
		return f
	}
	return 0
}

func rvString(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue()
	case bson.TypeInt32, bson.TypeInt64:
		return strconv.FormatInt(rvInt(v), 10)
	case bson.TypeDouble:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	}
	return ""
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02", "02/01/2006"}

func rvTime(v bson.RawValue) (time.Time, bool) {
	switch v.Type {
	case bson.TypeDateTime:
		return v.Time().UTC(), true
	case bson.TypeInt32, bson.TypeInt64, bson.TypeDouble:
		if ms := rvInt(v); ms > 0 {
			return time.UnixMilli(ms).UTC(), true
		}
	case bson.TypeString:
		s := strings.TrimSpace(v.StringValue())
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func rvTimePtr(v bson.RawValue) *time.Time {
	if t, ok := rvTime(v); ok {
		return &t
	}
	return nil
}

func rvStrings(v bson.RawValue) []string {
	arr, ok := v.ArrayOK()
	if !ok {
		return nil
	}
	vals, err := arr.Values()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, e := range vals {
		if s := rvString(e); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func rvLen(v bson.RawValue) int {
	arr, ok := v.ArrayOK()
	if !ok {
		return 0
	}
	vals, err := arr.Values()
	if err != nil {
		return 0
	}
	return len(vals)
}
