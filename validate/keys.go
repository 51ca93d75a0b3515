package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"pkt.systems/zscale/api"
)

// Kind names an addressable entity kind.
type Kind string

// Entity kinds.
const (
	KindTestCase  Kind = "test_case"
	KindTestCycle Kind = "test_cycle"
	KindTestPlan  Kind = "test_plan"
	KindFolder    Kind = "folder"
	KindStatus    Kind = "status"
	KindPriority  Kind = "priority"
)

type kindSpec struct {
	noun    string
	field   string
	prefix  string
	numeric bool
}

var kinds = map[Kind]kindSpec{
	KindTestCase:  {noun: "test case", field: "testCaseKey", prefix: "T"},
	KindTestCycle: {noun: "test cycle", field: "testCycleKey", prefix: "R"},
	KindTestPlan:  {noun: "test plan", field: "testPlanKey", prefix: "P"},
	KindFolder:    {noun: "folder", field: "folderId", numeric: true},
	KindStatus:    {noun: "status", field: "statusId", numeric: true},
	KindPriority:  {noun: "priority", field: "priorityId", numeric: true},
}

// Kinds lists every entity kind.
func Kinds() []Kind {
	return []Kind{KindTestCase, KindTestCycle, KindTestPlan, KindFolder, KindStatus, KindPriority}
}

// Prefix returns the key prefix letter of keyed kinds and "" for numeric ones.
func (k Kind) Prefix() string { return kinds[k].prefix }

// Numeric reports whether the kind is addressed by a numeric id.
func (k Kind) Numeric() bool { return kinds[k].numeric }

// Field returns the argument name that carries the kind's key or id.
func (k Kind) Field() string { return kinds[k].field }

// Noun returns the human-readable name.
func (k Kind) Noun() string {
	if spec, ok := kinds[k]; ok {
		return spec.noun
	}
	return string(k)
}

// Example returns a well-formed key or id for messages.
func (k Kind) Example() string {
	spec := kinds[k]
	if spec.numeric {
		return "123"
	}
	return "PROJ-" + spec.prefix + "123"
}

func kindForPrefix(prefix string) (Kind, bool) {
	for k, spec := range kinds {
		if !spec.numeric && spec.prefix == prefix {
			return k, true
		}
	}
	return "", false
}

// Key checks a key of the given kind. Keyed kinds must match
// <PROJECT>-<PREFIX><digits>; numeric kinds must be a positive integer. Only
// surrounding whitespace is normalized away.
func Key(kind Kind, key string) Result[string] {
	var c collector
	out := checkKey(&c, kind, kind.Field(), key)
	return result(out, &c)
}

func checkKey(c *collector, kind Kind, field, raw string) string {
	spec, ok := kinds[kind]
	if !ok {
		c.add("kind", fmt.Sprintf("unknown entity kind %q", kind))
		return ""
	}
	key := strings.TrimSpace(raw)
	if key == "" {
		c.add(field, "is required")
		return ""
	}
	if spec.numeric {
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil || n < 1 {
			c.add(field, fmt.Sprintf("must be a positive integer %s id (got %q)", spec.noun, key))
			return ""
		}
		return strconv.FormatInt(n, 10)
	}
	project, suffix, found := strings.Cut(key, "-")
	if !found || project == "" {
		c.add(field, fmt.Sprintf("must be a %s key like %s; the project segment is missing (got %q)", spec.noun, kind.Example(), key))
		return ""
	}
	if !api.ProjectKeyPattern.MatchString(project) {
		c.add(field, fmt.Sprintf("project segment %q must be an upper-case Jira project key (got %q)", project, key))
		return ""
	}
	if n := utf8.RuneCountInString(project); n > api.MaxProjectKeyLength {
		c.add(field, fmt.Sprintf("project segment %q must be at most %d characters (got %q)", project, api.MaxProjectKeyLength, key))
		return ""
	}
	if suffix == "" {
		c.add(field, fmt.Sprintf("must end in %s followed by digits, like %s (got %q)", spec.prefix, kind.Example(), key))
		return ""
	}
	prefix, digits := suffix[:1], suffix[1:]
	if prefix != spec.prefix {
		if other, ok := kindForPrefix(prefix); ok && digitsOnly(digits) {
			c.add(field, fmt.Sprintf("%q is a %s key; %s keys use the prefix %s, like %s", key, other.Noun(), spec.noun, spec.prefix, kind.Example()))
		} else {
			c.add(field, fmt.Sprintf("must be a %s key like %s with the prefix %s (got %q)", spec.noun, kind.Example(), spec.prefix, key))
		}
		return ""
	}
	if !digitsOnly(digits) {
		c.add(field, fmt.Sprintf("must end in digits after %s, like %s (got %q)", spec.prefix, kind.Example(), key))
		return ""
	}
	return key
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ID checks a numeric id of a numeric kind.
func ID(kind Kind, id int64) Result[int64] {
	var c collector
	checkID(&c, kind, kind.Field(), id)
	return result(id, &c)
}

func checkID(c *collector, kind Kind, field string, id int64) {
	spec, ok := kinds[kind]
	if !ok || !spec.numeric {
		c.add("kind", fmt.Sprintf("%q is not addressed by a numeric id", kind))
		return
	}
	if id < 1 {
		c.add(field, fmt.Sprintf("must be a positive integer %s id (got %d)", spec.noun, id))
	}
}

// ProjectKey checks a required Jira project key.
func ProjectKey(key string) Result[string] {
	var c collector
	key = strings.TrimSpace(key)
	if key == "" {
		c.add("projectKey", "is required")
		return result(key, &c)
	}
	checkProjectKey(&c, "projectKey", key)
	return result(key, &c)
}

func checkProjectKey(c *collector, field, key string) {
	if key == "" {
		return
	}
	if n := utf8.RuneCountInString(key); n > api.MaxProjectKeyLength {
		c.add(field, fmt.Sprintf("must be at most %d characters (got %d)", api.MaxProjectKeyLength, n))
	}
	if !api.ProjectKeyPattern.MatchString(key) {
		c.add(field, fmt.Sprintf("must be an upper-case Jira project key like PROJ (got %q)", key))
	}
}

// StatusType checks a status type against the closed set.
func StatusType(statusType string) Result[string] {
	var c collector
	checkEnum(&c, "statusType", statusType, api.StatusTypes, true)
	return result(statusType, &c)
}

// FolderType checks a folder type against the closed set.
func FolderType(folderType string) Result[string] {
	var c collector
	checkEnum(&c, "folderType", folderType, api.FolderTypes, true)
	return result(folderType, &c)
}

func checkEnum(c *collector, field, value string, allowed []string, required bool) {
	if value == "" {
		if required {
			c.add(field, "is required")
		}
		return
	}
	if !slices.Contains(allowed, value) {
		c.add(field, fmt.Sprintf("must be one of %s (got %q)", strings.Join(allowed, ", "), value))
	}
}

// VersionNumber checks a one-based test case version number.
func VersionNumber(version int64) Result[int64] {
	var c collector
	if version < 1 {
		c.add("version", fmt.Sprintf("must be at least 1 (got %d)", version))
	}
	return result(version, &c)
}
