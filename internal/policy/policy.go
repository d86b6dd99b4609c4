// Package policy holds the static authorisation matrix for suspension codes:
// which request source may apply a code, at which processing stages, and how
// the code behaves when holds overlap, are revived, or expire.
package policy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

//go:embed default_policy.yaml
var defaultDocument []byte

// StageRule selects the set of processing stages a code may be applied at.
type StageRule string

const (
	StageRuleCommon                    StageRule = "common"
	StageRuleROVOnly                   StageRule = "rov_only"
	StageRuleEndOfReminder             StageRule = "end_of_reminder"
	StageRuleCommonExceptEndOfReminder StageRule = "common_except_end_of_reminder"
)

// Class is the precedence class of a PS code.
type Class string

const (
	ClassNormal    Class = "normal"
	ClassException Class = "exception"
	ClassCRS       Class = "crs"
)

// NPDRule describes how the next processing date is patched after revival.
type NPDRule string

const (
	NPDNone     NPDRule = "none"
	NPDIfLapsed NPDRule = "if_lapsed"
	NPDAlways   NPDRule = "always"
)

// LoopRule describes whether an expired TS is re-applied.
type LoopRule string

const (
	LoopNone           LoopRule = "none"
	LoopAlways         LoopRule = "always"
	LoopFurnishPending LoopRule = "furnish_pending"
)

// Rule is one row of the table.
type Rule struct {
	Type            models.SuspensionType `yaml:"type"`
	Code            string                `yaml:"code"`
	Sources         []string              `yaml:"sources"`
	Stage           StageRule             `yaml:"stage"`
	Class           Class                 `yaml:"class"`
	RefundOnPaid    bool                  `yaml:"refund_on_paid"`
	RefundOnRevival bool                  `yaml:"refund_on_revival"`
	NPD             NPDRule               `yaml:"npd"`
	Loop            LoopRule              `yaml:"loop"`
}

type document struct {
	Stages struct {
		Common        []string `yaml:"common"`
		Court         []string `yaml:"court"`
		EndOfReminder []string `yaml:"end_of_reminder"`
	} `yaml:"stages"`
	Codes []Rule `yaml:"codes"`
}

type ruleKey struct {
	t    models.SuspensionType
	code string
}

type stageSet map[string]struct{}

func newStageSet(stages []string) stageSet {
	set := make(stageSet, len(stages))
	for _, s := range stages {
		set[s] = struct{}{}
	}
	return set
}

func (s stageSet) has(stage string) bool {
	_, ok := s[stage]
	return ok
}

// Policy is immutable after construction and safe for concurrent use.
type Policy struct {
	rules         map[ruleKey]Rule
	common        stageSet
	court         stageSet
	endOfReminder stageSet
}

// Default returns the embedded table.
func Default() (*Policy, error) {
	return Parse(defaultDocument)
}

// Load reads the table from path, or the embedded default when path is empty.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suspension policy %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Policy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode suspension policy: %w", err)
	}
	if len(doc.Stages.Common) == 0 {
		return nil, fmt.Errorf("suspension policy: common stages must not be empty")
	}

	p := &Policy{
		rules:         make(map[ruleKey]Rule, len(doc.Codes)),
		common:        newStageSet(doc.Stages.Common),
		court:         newStageSet(doc.Stages.Court),
		endOfReminder: newStageSet(doc.Stages.EndOfReminder),
	}
	for i, rule := range doc.Codes {
		rule, err := normalise(rule)
		if err != nil {
			return nil, fmt.Errorf("suspension policy entry %d: %w", i, err)
		}
		key := ruleKey{t: rule.Type, code: rule.Code}
		if _, dup := p.rules[key]; dup {
			return nil, fmt.Errorf("suspension policy entry %d: duplicate code %s-%s", i, rule.Type, rule.Code)
		}
		p.rules[key] = rule
	}
	return p, nil
}

func normalise(rule Rule) (Rule, error) {
	if !rule.Type.Valid() {
		return rule, fmt.Errorf("unknown suspension type %q", rule.Type)
	}
	if rule.Code == "" {
		return rule, fmt.Errorf("empty code")
	}
	for _, source := range rule.Sources {
		switch source {
		case models.SourceStaff, models.SourcePlus, models.SourceBackend:
		default:
			return rule, fmt.Errorf("%s-%s: unknown source %q", rule.Type, rule.Code, source)
		}
	}

	if rule.Stage == "" {
		rule.Stage = StageRuleCommon
	}
	switch rule.Stage {
	case StageRuleCommon, StageRuleROVOnly, StageRuleEndOfReminder, StageRuleCommonExceptEndOfReminder:
	default:
		return rule, fmt.Errorf("%s-%s: unknown stage rule %q", rule.Type, rule.Code, rule.Stage)
	}

	if rule.Class == "" {
		rule.Class = ClassNormal
	}
	switch rule.Class {
	case ClassNormal:
	case ClassException, ClassCRS:
		if rule.Type != models.SuspensionTypePermanent {
			return rule, fmt.Errorf("%s-%s: class %q applies to PS only", rule.Type, rule.Code, rule.Class)
		}
	default:
		return rule, fmt.Errorf("%s-%s: unknown class %q", rule.Type, rule.Code, rule.Class)
	}

	if rule.NPD == "" {
		rule.NPD = NPDNone
	}
	switch rule.NPD {
	case NPDNone, NPDIfLapsed, NPDAlways:
	default:
		return rule, fmt.Errorf("%s-%s: unknown npd rule %q", rule.Type, rule.Code, rule.NPD)
	}

	if rule.Loop == "" {
		rule.Loop = LoopNone
	}
	switch rule.Loop {
	case LoopNone:
	case LoopAlways, LoopFurnishPending:
		if rule.Type != models.SuspensionTypeTemporary {
			return rule, fmt.Errorf("%s-%s: loop rules apply to TS only", rule.Type, rule.Code)
		}
	default:
		return rule, fmt.Errorf("%s-%s: unknown loop rule %q", rule.Type, rule.Code, rule.Loop)
	}
	return rule, nil
}

// Rule returns the table row for (t, code).
func (p *Policy) Rule(t models.SuspensionType, code string) (Rule, bool) {
	rule, ok := p.rules[ruleKey{t: t, code: code}]
	return rule, ok
}

// SourceAllowed reports whether source may apply code as type t.
func (p *Policy) SourceAllowed(source string, t models.SuspensionType, code string) bool {
	rule, ok := p.Rule(t, code)
	if !ok {
		return false
	}
	for _, allowed := range rule.Sources {
		if allowed == source {
			return true
		}
	}
	return false
}

// CheckStage returns an empty string when code may be applied at stage, or
// the reason it may not.
func (p *Policy) CheckStage(t models.SuspensionType, code, stage string) string {
	generic := fmt.Sprintf("%s Code cannot be applied due to Last Processing Stage is not among the eligible stages.", t)
	if stage == "" {
		return generic
	}
	if p.court.has(stage) {
		return "Notice is under Court processing"
	}

	rule := StageRuleCommon
	if r, ok := p.Rule(t, code); ok {
		rule = r.Stage
	}

	switch rule {
	case StageRuleROVOnly:
		if stage != "ROV" {
			return fmt.Sprintf("%s code can only be applied at ROV stage. Current stage: %s", code, stage)
		}
	case StageRuleEndOfReminder:
		if !p.endOfReminder.has(stage) {
			return fmt.Sprintf("%s code can only be applied at end of reminder stages. Current stage: %s", code, stage)
		}
	case StageRuleCommonExceptEndOfReminder:
		if p.endOfReminder.has(stage) {
			return fmt.Sprintf("%s code cannot be applied at end of reminder stages. Current stage: %s", code, stage)
		}
		if !p.common.has(stage) {
			return generic
		}
	default:
		if !p.common.has(stage) {
			return generic
		}
	}
	return ""
}

// StageAllowed reports whether code may be applied at stage.
func (p *Policy) StageAllowed(t models.SuspensionType, code, stage string) bool {
	return p.CheckStage(t, code, stage) == ""
}

func (p *Policy) psRule(code string) Rule {
	rule, _ := p.Rule(models.SuspensionTypePermanent, code)
	return rule
}

// IsException reports whether a PS code tolerates TS, CRS and EPR holds stacked on top.
func (p *Policy) IsException(code string) bool {
	return p.psRule(code).Class == ClassException
}

// IsCRS reports whether a PS code is payment-triggered.
func (p *Policy) IsCRS(code string) bool {
	return p.psRule(code).Class == ClassCRS
}

// RefundOnPaid reports whether a PS code may be applied to a paid notice.
func (p *Policy) RefundOnPaid(code string) bool {
	return p.psRule(code).RefundOnPaid
}

// RefundOnRevival reports whether reviving a PS code identifies a refund.
func (p *Policy) RefundOnRevival(code string) bool {
	return p.psRule(code).RefundOnRevival
}

// NPD returns the patching rule for (t, code); unknown codes are never patched.
func (p *Policy) NPD(t models.SuspensionType, code string) NPDRule {
	rule, ok := p.Rule(t, code)
	if !ok {
		return NPDNone
	}
	return rule.NPD
}

// Loop returns the re-apply rule for an expired TS code.
func (p *Policy) Loop(code string) LoopRule {
	rule, ok := p.Rule(models.SuspensionTypeTemporary, code)
	if !ok {
		return LoopNone
	}
	return rule.Loop
}

// Codes lists the codes of type t available to source, sorted. An empty
// source lists every code of the type; an empty type lists both.
func (p *Policy) Codes(t models.SuspensionType, source string) []Rule {
	out := make([]Rule, 0)
	for _, rule := range p.rules {
		if t != "" && rule.Type != t {
			continue
		}
		if source != "" && !p.SourceAllowed(source, rule.Type, rule.Code) {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type > out[j].Type
		}
		return out[i].Code < out[j].Code
	})
	return out
}
