package dedup

import "regexp"

// Cluster is a named ongoing real-world subject. A bullet belongs to the first
// cluster in table order whose pattern matches it.
type Cluster struct {
	Name    string
	Pattern *regexp.Regexp
}

func cluster(name, expr string) Cluster {
	return Cluster{Name: name, Pattern: regexp.MustCompile(expr)}
}

// Clusters lists the tracked subjects. Overall statuses come before
// individual items so a status line naming an item lands in the status cluster.
var Clusters = []Cluster{
	cluster("application-status", `(?i)application.*(?:pending|waiting|status|under review)|applications?\s+(?:sent|submitted)|応募.*待ち|応募.*件|応募ステータス`),
	cluster("listing-status", `(?i)listing.*(?:live|status|pending)`),
	cluster("education-project", `(?i)education.*(?:project|proposal)`),
	cluster("inventory", `(?i)inventory system|在庫管理`),
	cluster("project-title", `(?i)project.*title`),
	cluster("illustrated-map", `(?i)illustrated map|イラストマップ`),
	cluster("analytics-api", `analytics.*API`),
	cluster("promo-image", `(?i)promo.*image`),
	cluster("test-snippet", `(?i)snippets?.*(?:left|remaining)|test snippet|スニペット.*残っている|テストスニペット`),
	cluster("site-a-cta", `site-a.*CTA`),
	cluster("site-b-waf", `site-b.*WAF`),
	cluster("keyword-research", `(?i)keyword.*research`),
	cluster("qr-code", `(?i)qr[- ]?code|QRコード`),
	cluster("chatgpt-gig", `(?i)chatgpt (?:gig|job)|ChatGPT案件`),
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// OpenTriggers mark a bullet as a pending action or handoff
var OpenTriggers = patterns(
	`(?i)\bwaiting\b`, `(?i)\bpending\b`, `\bTODO\b`, `(?i)\bnot (?:yet )?started\b`,
	`(?i)\bconsidering\b`, `(?i)\bto consider\b`, `(?i)\bon hold\b`, `(?i)\bremaining\b`,
	`(?i)\bleft over\b`, `(?i)\bfollow[- ]up\b`, `(?i)for next time$`,
	`待ち`, `待って`, `未着手`, `次の自分へ$`, `検討`, `温めている`, `残っている`,
)

// ResolvedPatterns mark a bullet as done. Strikethrough is checked separately.
var ResolvedPatterns = patterns(
	`\[x\]`, `✅`, `(?i)\bresolved\b`, `(?i)\bcompleted\b`,
	`解決`, `完了`, `追記済み`, `補完$`, `引き継いだ`, `追記$`, `記録$`,
)

// ObservationPatterns mark retrospective commentary that reads like an open
// item but records a past evaluation or learning.
var ObservationPatterns = patterns(
	// evaluations of past choices
	`(?i)\bwas (?:correct|right|the right call)\b`, `(?i)\bgood (?:call|decision)\b`, `(?i)\bpaid off\b`,
	`正しかった`, `良い判断`, `判断は.*正し`, `効いた`, `固められた`,
	// learnings
	`(?i)\bpattern (?:recurred|repeated|held)\b`, `(?i)\bper the principle\b`, `(?i)\bstrategy (?:recurred|held)\b`,
	`原則.*通り`, `原則に従って`, `パターン.*再現`, `戦略が再現`, `組み合わせ戦略`,
	// past dialogue and settled skips
	`(?i)\bwas asked\b`, `(?i)\bdecided to skip\b`, `(?i)\bpassed on it\b`,
	`正直に答えた`, `と問われ`, `見送り$`, `→見送り`, `見送り判断`, `使えた$`, `選んだ$`,
	// situation reports
	`(?i)\btoo many pending\b`, `(?i)\bno change since\b`, `(?i)\bunchanged since last\b`,
	`待ちタスクが多い`, `変化なし）$`, `前回と変化なし`,
	// comparisons and settled direction
	`(?i)\bcomparison:`, `(?i)\bnew direction\b`, `比較:`, `は.*強み$`, `新しい方向性`,
)

// FactTriggers mark a bullet as a finding or conclusion worth indexing
var FactTriggers = patterns(
	`\*\*(?:Finding|Conclusion|Cause|Fix|Solution)\*\*`, `(?i)\bbiggest finding\b`, `(?i)\bturned out\b`,
	`\*\*発見\*\*`, `\*\*結論\*\*`, `\*\*原因\*\*`, `\*\*解決方法\*\*`, `最大の発見`, `判明`,
)

func matchAny(rs []*regexp.Regexp, s string) bool {
	for _, r := range rs {
		if r.MatchString(s) {
			return true
		}
	}
	return false
}
