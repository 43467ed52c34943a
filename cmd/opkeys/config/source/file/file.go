package file

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/blocknative/opkeys/cmd/opkeys/config"
	"github.com/blocknative/opkeys/structs"
)

var (
	ErrParse           = errors.New("parse failure")
	ErrUnknownSection  = errors.New("unknown section")
	ErrUnknownParam    = errors.New("unknown parameter")
	ErrUnsupportedType = errors.New("unsupported type")
)

type propagator interface {
	Propagate(structs.OldNew) error
}

type Source struct {
	filepath string
}

func NewSource(filepath string) (s *Source) {
	return &Source{
		filepath: filepath,
	}
}

func (s *Source) Load(c *config.Config, propagate bool) error {
	fh, err := os.Open(s.filepath)
	if err != nil {
		return err
	}
	defer fh.Close()

	// only ini suported
	return parseIni(fh, c, propagate)
}

func parseIni(r io.Reader, cfg *config.Config, propagate bool) error {
	elem := reflect.ValueOf(cfg).Elem()
	t := elem.Type()

	var (
		currentSection reflect.Value
		sectionName    string
		lineNo         int
	)

	s := bufio.NewScanner(r)
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if len(line) < 1 {
			continue
		}

		switch line[0] {
		case '#', '/', ';':
			// dissregard any comments
		case '[': // section
			tag, _, ok := strings.Cut(line[1:], "]")
			if !ok {
				return fmt.Errorf("%w: line %d", ErrParse, lineNo)
			}

			currentSection = reflect.Value{}
			for i := 0; i < t.NumField(); i++ {
				f := t.Field(i)
				if name, ok := f.Tag.Lookup("config"); ok && name == tag {
					currentSection = elem.Field(i)
					break
				}
			}
			if !currentSection.IsValid() {
				return fmt.Errorf("%w: %s", ErrUnknownSection, tag)
			}
			if currentSection.IsNil() {
				currentSection.Set(reflect.New(currentSection.Type().Elem()))
			}
			sectionName = tag

		default:
			key, value, found := strings.Cut(line, "=")
			if !found || !currentSection.IsValid() {
				return fmt.Errorf("%w: line %d", ErrParse, lineNo)
			}

			if err := parseParam(currentSection, sectionName, strings.TrimSpace(key), strings.TrimSpace(value), propagate); err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}

	return s.Err()
}

func parseParam(section reflect.Value, sectionName, key, value string, propagate bool) error {
	sv := section.Elem()
	t := sv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if name, ok := f.Tag.Lookup("config"); !ok || name != key {
			continue
		}

		el := sv.Field(i)
		old, updated, err := setValue(el, f.Type, value)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", sectionName, key, err)
		}

		if !propagate || reflect.DeepEqual(old, updated) {
			return nil
		}
		if p, ok := section.Interface().(propagator); ok {
			return p.Propagate(structs.OldNew{
				ParamPath: []string{sectionName, key},
				Name:      f.Name,
				Old:       old,
				New:       updated,
			})
		}
		return nil
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownParam, sectionName, key)
}

// setValue stores value in el, ints are reported as int64.
func setValue(el reflect.Value, ft reflect.Type, value string) (old, updated any, err error) {
	if ft == reflect.TypeOf(time.Duration(0)) {
		d, err := paramParseTimeDuration(value)
		if err != nil {
			return nil, nil, err
		}
		old = time.Duration(el.Int())
		el.SetInt(int64(d))
		return old, d, nil
	}

	switch ft.Kind() {
	case reflect.Bool:
		b, err := paramParseBool(value)
		if err != nil {
			return nil, nil, err
		}
		old = el.Bool()
		el.SetBool(b)
		return old, b, nil
	case reflect.Int, reflect.Int64, reflect.Int32:
		i, err := paramParseInt(value)
		if err != nil {
			return nil, nil, err
		}
		old = el.Int()
		el.SetInt(i)
		return old, i, nil
	case reflect.String:
		old = el.String()
		el.SetString(value)
		return old, value, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ft.Kind())
	}
}

func paramParseBool(value string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(value))
}

func paramParseTimeDuration(value string) (time.Duration, error) {
	return time.ParseDuration(value)
}

func paramParseInt(value string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(value, "_", ""), 10, 64)
}
