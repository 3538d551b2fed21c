package store

import (
	"fmt"
	"time"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		for _, l := range timeLayouts {
			if ts, err := time.Parse(l, t); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: time %q", ErrColumnType, t)
	case []byte:
		return asTime(string(t))
	case int64:
		return time.Unix(t, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: time %T", ErrColumnType, v)
}

func asIntPtr(v any) (*int, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int64:
		i := int(n)
		return &i, nil
	case int32:
		i := int(n)
		return &i, nil
	case int:
		return &n, nil
	case float64:
		i := int(n)
		return &i, nil
	}
	return nil, fmt.Errorf("%w: int %T", ErrColumnType, v)
}

func asFloatPtr(v any) (*float64, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &n, nil
	case float32:
		f := float64(n)
		return &f, nil
	case int64:
		f := float64(n)
		return &f, nil
	}
	return nil, fmt.Errorf("%w: float %T", ErrColumnType, v)
}

func asStringPtr(v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	case []byte:
		str := string(s)
		return &str, nil
	}
	return nil, fmt.Errorf("%w: string %T", ErrColumnType, v)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	}
	return false, fmt.Errorf("%w: bool %T", ErrColumnType, v)
}

func intArg(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func floatArg(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
