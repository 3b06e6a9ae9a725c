package observability

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// FilterEnvVar names the environment variable that overrides the default
// filter directive when set.
const FilterEnvVar = "LOG_FILTER"

// offLevel is above every real zap level, so nothing passes a rule set to it.
const offLevel = zapcore.InvalidLevel

// Filter decides which entries pass through the pipeline, based on the entry
// level and its target (the zap logger name).
//
// A directive is a comma-separated list of rules. Each rule is either a bare
// level, which becomes the default, or target=level. Targets match logger
// names by dotted prefix and the longest match wins:
//
//	info,newsletter.postgres=debug,log=warn
//
// Filter is immutable once parsed and safe for concurrent use.
type Filter struct {
	directive string
	def       zapcore.Level
	targets   []targetRule
}

type targetRule struct {
	target string
	level  zapcore.Level
}

// ParseFilter parses a filter directive.
// An empty directive yields a filter that only passes errors and above.
func ParseFilter(directive string) (*Filter, error) {
	f := &Filter{
		directive: strings.TrimSpace(directive),
		def:       zapcore.ErrorLevel,
	}

	seen := make(map[string]bool)
	for _, raw := range strings.Split(f.directive, ",") {
		rule := strings.TrimSpace(raw)
		if rule == "" {
			continue
		}

		target, levelText, hasTarget := strings.Cut(rule, "=")
		if !hasTarget {
			levelText, target = target, ""
		}
		target = strings.TrimSpace(target)
		if hasTarget && target == "" {
			return nil, fmt.Errorf("invalid filter rule %q: empty target", rule)
		}

		level, err := parseFilterLevel(strings.TrimSpace(levelText))
		if err != nil {
			return nil, fmt.Errorf("invalid filter rule %q: %w", rule, err)
		}

		if !hasTarget {
			f.def = level
			continue
		}
		if seen[target] {
			// later rules for the same target replace earlier ones
			for i := range f.targets {
				if f.targets[i].target == target {
					f.targets[i].level = level
				}
			}
			continue
		}
		seen[target] = true
		f.targets = append(f.targets, targetRule{target: target, level: level})
	}

	sort.SliceStable(f.targets, func(i, j int) bool {
		return len(f.targets[i].target) > len(f.targets[j].target)
	})

	return f, nil
}

// ResolveFilter returns the filter read from FilterEnvVar when it is set and
// parses, otherwise the filter for defaultDirective.
func ResolveFilter(defaultDirective string) (*Filter, error) {
	if value, ok := os.LookupEnv(FilterEnvVar); ok && strings.TrimSpace(value) != "" {
		if f, err := ParseFilter(value); err == nil {
			return f, nil
		}
	}
	return ParseFilter(defaultDirective)
}

// String returns the directive the filter was parsed from.
func (f *Filter) String() string {
	return f.directive
}

// Enabled reports whether an entry at lvl emitted under target passes.
func (f *Filter) Enabled(target string, lvl zapcore.Level) bool {
	threshold := f.levelFor(target)
	return threshold != offLevel && lvl >= threshold
}

// LevelEnabled reports whether any rule could pass an entry at lvl. It lets
// zap skip field construction for entries no target would accept.
func (f *Filter) LevelEnabled(lvl zapcore.Level) bool {
	if f.def != offLevel && lvl >= f.def {
		return true
	}
	for _, rule := range f.targets {
		if rule.level != offLevel && lvl >= rule.level {
			return true
		}
	}
	return false
}

func (f *Filter) levelFor(target string) zapcore.Level {
	for _, rule := range f.targets {
		if target == rule.target || strings.HasPrefix(target, rule.target+".") {
			return rule.level
		}
	}
	return f.def
}

func parseFilterLevel(text string) (zapcore.Level, error) {
	switch strings.ToLower(text) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off":
		return offLevel, nil
	default:
		return offLevel, fmt.Errorf("unknown level %q", text)
	}
}
