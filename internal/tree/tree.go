// Package tree 在 Go 值与通用树（map[string]any / []any / 标量）之间转换。
//
// 结构体字段名取自 json 标签；time.Duration 与 time.Time 视为标量。
package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	yamlv3 "go.yaml.in/yaml/v3"
)

var (
	durationType = reflect.TypeFor[time.Duration]()
	timeType     = reflect.TypeFor[time.Time]()
)

// ═══════════════════════════════════════════════════════════════════════════
// Go 值 -> 树
// ═══════════════════════════════════════════════════════════════════════════

// TagName 返回字段在树中的 key，没有 json 标签或标签为 "-" 时返回空串。
func TagName(field reflect.StructField) string {
	return parseTagName(field.Tag.Get("json"))
}

func parseTagName(tag string) string {
	if tag == "" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}

	return name
}

// IsStructType 报告 typ（或其指向的类型）是否为需要展开的结构体。
func IsStructType(typ reflect.Type) bool {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	return typ.Kind() == reflect.Struct && typ != durationType && typ != timeType
}

// FromStruct 将结构体（或其指针）转换为 map，非结构体返回空 map。
func FromStruct(v any) map[string]any {
	val := reflect.ValueOf(v)
	if !val.IsValid() {
		return map[string]any{}
	}

	return structValueToMap(val, val.Type())
}

// From 将任意 Go 值转换为树，map 的 key 统一转为字符串。
func From(v any) any {
	val := reflect.ValueOf(v)
	if !val.IsValid() {
		return nil
	}

	return valueToAny(val, val.Type())
}

func structValueToMap(val reflect.Value, typ reflect.Type) map[string]any {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return map[string]any{}
		}
		val = val.Elem()
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return map[string]any{}
	}

	out := make(map[string]any)
	for i := range typ.NumField() {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}

		key := TagName(field)
		if key == "" {
			continue
		}

		out[key] = valueToAny(val.Field(i), field.Type)
	}

	return out
}

func valueToAny(val reflect.Value, typ reflect.Type) any {
	if val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
		typ = val.Type()
	}
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
		typ = typ.Elem()
	}

	if IsStructType(typ) {
		return structValueToMap(val, typ)
	}

	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return nil
		}
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return val.Interface()
		}
		out := make([]any, val.Len())
		for i := range val.Len() {
			elem := val.Index(i)
			out[i] = valueToAny(elem, elem.Type())
		}

		return out
	case reflect.Map:
		if val.IsNil() {
			return nil
		}
		out := make(map[string]any, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			out[key] = valueToAny(iter.Value(), iter.Value().Type())
		}

		return out
	default:
		return val.Interface()
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 解析与合并
// ═══════════════════════════════════════════════════════════════════════════

// Parse 按扩展名将文件内容解析为 map：.json 使用 JSON，其余按 YAML 处理。
func Parse(path string, content []byte) (map[string]any, error) {
	var raw any
	var err error
	if IsJSONPath(path) {
		err = json.Unmarshal(content, &raw)
	} else {
		err = yamlv3.Unmarshal(content, &raw)
	}
	if err != nil {
		return nil, err
	}

	normalized := Normalize(raw)
	if normalized == nil {
		return map[string]any{}, nil
	}
	m, ok := normalized.(map[string]any)
	if !ok {
		return nil, errors.New("document root must be object")
	}

	return m, nil
}

// IsJSONPath 报告 path 是否为 .json 文件。
func IsJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Normalize 将 map[any]any 的 key 统一转为字符串。
func Normalize(val any) any {
	switch typed := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[key] = Normalize(value)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fmt.Sprintf("%v", key)] = Normalize(value)
		}

		return out
	case []any:
		for i := range typed {
			typed[i] = Normalize(typed[i])
		}

		return typed
	default:
		return val
	}
}

// Merge 将 src 深度合并到 dst，同名叶子以 src 为准。
func Merge(dst, src map[string]any) {
	for key, value := range src {
		if valueMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				Merge(dstMap, valueMap)

				continue
			}
		}

		dst[key] = value
	}
}

// SetPath 按点分路径写入值，中间层不存在时自动创建。
func SetPath(dst map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := dst
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value

			return
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
}

// Keys 返回所有叶子的点分路径，按字典序排列。
func Keys(data map[string]any) []string {
	var keys []string
	collectKeys(data, "", &keys)
	slices.Sort(keys)

	return keys
}

func collectKeys(data map[string]any, prefix string, keys *[]string) {
	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok && len(child) > 0 {
			collectKeys(child, fullKey, keys)

			continue
		}

		*keys = append(*keys, fullKey)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 树 -> Go 值
// ═══════════════════════════════════════════════════════════════════════════

// Decode 将树解码到 out，支持字符串形式的 time.Duration 与 TextUnmarshaler。
func Decode(data any, out any) error {
	conf := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "json",
	}
	decoder, err := mapstructure.NewDecoder(conf)
	if err != nil {
		return err
	}

	return decoder.Decode(data)
}
