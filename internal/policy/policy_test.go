package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/notice-suspension-api/internal/models"
)

const (
	ts = models.SuspensionTypeTemporary
	ps = models.SuspensionTypePermanent
)

func mustDefault(t *testing.T) *Policy {
	t.Helper()
	p, err := Default()
	require.NoError(t, err)
	return p
}

func TestSourceAllowListsMatchMatrix(t *testing.T) {
	p := mustDefault(t)

	cases := map[string]struct {
		t     models.SuspensionType
		codes []string
	}{
		models.SourcePlus:    {ts, []string{"APE", "APP", "CCE", "PRI", "RED"}},
		models.SourceStaff:   {ts, []string{"ACR", "CLV", "FPL", "HST", "INS", "MS", "NRO", "OLD", "OUT", "PAM", "PDP", "PRI", "ROV", "SYS", "UNC"}},
		models.SourceBackend: {ts, []string{"ACR", "CLV", "HST", "NRO", "PDP", "ROV", "SYS"}},
	}
	for source, tc := range cases {
		assert.Equal(t, tc.codes, codesOf(p.Codes(tc.t, source)), source)
	}

	psCases := map[string][]string{
		models.SourcePlus:    {"APP", "CAN", "VST"},
		models.SourceStaff:   {"ANS", "CAN", "CFA", "CFP", "DBB", "DIP", "FCT", "FOR", "FTC", "IST", "MID", "OTH", "RIP", "RP2", "SCT", "SLC", "SSV", "VCT", "VST", "WWC", "WWF", "WWP"},
		models.SourceBackend: {"ANS", "CFP", "DBB", "DIP", "FOR", "FP", "IST", "MID", "PRA", "RIP", "RP2", "WWC", "WWF", "WWP"},
	}
	for source, codes := range psCases {
		assert.Equal(t, codes, codesOf(p.Codes(ps, source)), source)
	}
}

func TestSourceAllowedRejectsUnknown(t *testing.T) {
	p := mustDefault(t)

	assert.True(t, p.SourceAllowed(models.SourceStaff, ts, "ROV"))
	assert.False(t, p.SourceAllowed(models.SourcePlus, ts, "ROV"))
	assert.False(t, p.SourceAllowed("", ts, "ROV"))
	assert.False(t, p.SourceAllowed(models.SourceStaff, ts, "ZZZ"))
	assert.False(t, p.SourceAllowed(models.SourceStaff, ps, "FP"))
}

func TestStageAllowed(t *testing.T) {
	p := mustDefault(t)

	cases := []struct {
		name    string
		t       models.SuspensionType
		code    string
		stage   string
		allowed bool
	}{
		{"court stage rejects everything", ts, "ACR", "CRT", false},
		{"court stage rejects PS", ps, "FOR", "CRC", false},
		{"common code at common stage", ts, "ACR", "RD1", true},
		{"common code at unknown stage", ts, "ACR", "XYZ", false},
		{"null stage", ts, "ACR", "", false},
		{"ROV only at ROV", ts, "ROV", "ROV", true},
		{"ROV elsewhere", ts, "ROV", "RD1", false},
		{"CLV at RR3", ts, "CLV", "RR3", true},
		{"CLV at DR3", ts, "CLV", "DR3", true},
		{"CLV at RD2", ts, "CLV", "RD2", false},
		{"NRO at RD2", ts, "NRO", "RD2", true},
		{"NRO at RR3", ts, "NRO", "RR3", false},
		{"NRO at DR3", ts, "NRO", "DR3", false},
		{"PS at CFC", ps, "DBB", "CFC", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, p.StageAllowed(tc.t, tc.code, tc.stage))
		})
	}

	assert.Equal(t, "Notice is under Court processing", p.CheckStage(ts, "ACR", "CRT"))
}

func TestPrecedenceClasses(t *testing.T) {
	p := mustDefault(t)

	for _, code := range []string{"DIP", "FOR", "MID", "RIP", "RP2"} {
		assert.True(t, p.IsException(code), code)
	}
	assert.False(t, p.IsException("CAN"))
	assert.True(t, p.IsCRS("FP"))
	assert.True(t, p.IsCRS("PRA"))
	assert.False(t, p.IsCRS("DBB"))

	for _, code := range []string{"APP", "CFA", "VST"} {
		assert.True(t, p.RefundOnPaid(code), code)
	}
	assert.False(t, p.RefundOnPaid("CAN"))
	assert.True(t, p.RefundOnRevival("FP"))
	assert.True(t, p.RefundOnRevival("PRA"))
	assert.False(t, p.RefundOnRevival("APP"))
}

func TestNPDAndLoopRules(t *testing.T) {
	p := mustDefault(t)

	for _, code := range []string{"ACR", "APE", "APP", "CCE", "MS", "PDP"} {
		assert.Equal(t, NPDIfLapsed, p.NPD(ts, code), code)
	}
	assert.Equal(t, NPDAlways, p.NPD(ts, "NRO"))
	assert.Equal(t, NPDNone, p.NPD(ts, "ROV"))
	for _, code := range []string{"DIP", "FOR", "RIP", "RP2", "SCT", "SLC", "SSV", "VCT"} {
		assert.Equal(t, NPDIfLapsed, p.NPD(ps, code), code)
	}
	assert.Equal(t, NPDNone, p.NPD(ps, "APP"))
	assert.Equal(t, NPDNone, p.NPD(ps, "MID"))

	assert.Equal(t, LoopAlways, p.Loop("CLV"))
	assert.Equal(t, LoopFurnishPending, p.Loop("PDP"))
	assert.Equal(t, LoopNone, p.Loop("HST"))
}

func TestParseRejectsInvalidTables(t *testing.T) {
	base := "stages:\n  common: [NPA]\ncodes:\n"
	cases := map[string]string{
		"unknown type":    base + "  - {type: XS, code: ACR}\n",
		"empty code":      base + "  - {type: TS, code: \"\"}\n",
		"duplicate":       base + "  - {type: TS, code: ACR}\n  - {type: TS, code: ACR}\n",
		"stage rule":      base + "  - {type: TS, code: ACR, stage: weekends}\n",
		"class on TS":     base + "  - {type: TS, code: ACR, class: exception}\n",
		"loop on PS":      base + "  - {type: PS, code: FOR, loop: always}\n",
		"unknown source":  base + "  - {type: TS, code: ACR, sources: [WEB]}\n",
		"no common stage": "codes: []\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseAllowsSameCodeForBothTypes(t *testing.T) {
	p, err := Parse([]byte("stages:\n  common: [NPA]\ncodes:\n  - {type: TS, code: APP, sources: [PLUS]}\n  - {type: PS, code: APP, sources: [PLUS], refund_on_paid: true}\n"))
	require.NoError(t, err)

	tsRule, ok := p.Rule(ts, "APP")
	require.True(t, ok)
	assert.False(t, tsRule.RefundOnPaid)
	assert.True(t, p.RefundOnPaid("APP"))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stages:\n  common: [NPA]\ncodes:\n  - {type: TS, code: ACR, sources: [OCMS]}\n"), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.True(t, p.SourceAllowed(models.SourceStaff, ts, "ACR"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func codesOf(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Code
	}
	return out
}
