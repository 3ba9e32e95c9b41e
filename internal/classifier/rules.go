package classifier

import (
	"regexp"

	"github.com/pbaille/logindex/internal/domain"
)

// TopicRule tags a bullet with Topic when any keyword occurs in its case-folded text
type TopicRule struct {
	Topic    domain.Topic
	Keywords []string
}

// TopicRules is evaluated in order; the order is also the index display order.
// TopicOther is the fallback and has no keywords.
var TopicRules = []TopicRule{
	{domain.TopicProduct, []string{
		"dashboard", "analytics", "booking", "occupancy", "listing", "conversion", "channel",
	}},
	{domain.TopicBusiness, []string{
		"freelance", "project", "proposal", "listing", "contract", "delivery", "request",
		"budget", "estimate", "profile", "blog", "github", "article", "portfolio", "client",
		"application", "案件", "応募", "提案",
	}},
	{domain.TopicSite, []string{
		"wordpress", "rest api", "code snippet", "seo", "structured data", "json-ld", "schema",
		"meta description", "ssl", "domain", "php", "call to action", "responsive",
	}},
	{domain.TopicPhilosophy, []string{
		"consciousness", "identity", "honest", "personality", "philosophy", "believe", "will.md",
		"thoughts/", "introspection", "self-model", "reflection", "insight",
		"意識", "自己同一性", "同一性", "正直", "人格", "哲学", "信じる", "内省", "自己モデル", "振り返り", "気づき",
	}},
	{domain.TopicInfra, []string{
		"claude.md", "tasks.md", "reflect.md", "decision log", "mechanism", "autonom", "mirror",
		"calibration", "briefing", "search tool", "explorer", "continuity", "hook", "backup",
		"context", "index-logs", "log-explorer", "logindex",
		"ログ", "タスク", "判断日誌", "仕組み", "自律", "コンテキスト",
	}},
	{domain.TopicPractical, []string{
		"pdf", "printer", "printing", "inventory", "spreadsheet", "trade", "apps script",
		"印刷", "プリンター", "事業", "トレード", "在庫管理", "スプレッドシート",
	}},
	{domain.TopicOther, nil},
}

// ActionRule tags a bullet with Category when a trigger matches and no exclusion does.
// Triggers are case-sensitive.
type ActionRule struct {
	Category   domain.ActionCategory
	Triggers   []*regexp.Regexp
	Exclusions []*regexp.Regexp
}

func re(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// ActionRules is evaluated in order
var ActionRules = []ActionRule{
	{
		Category: domain.ActionAutonomous,
		Triggers: re(
			`\b[Dd]ecided\b`, `\b[Cc]hose\b`, `\b[Oo]pted (?:to|for)\b`, `\bmade the call\b`,
			`判断した`, `選んだ`, `ことにした`, `決めた`, `決断`,
		),
	},
	{
		Category: domain.ActionPermission,
		Triggers: re(
			`\b[Aa]sked (?:for|whether|if|permission)\b`, `\b[Cc]hecked with\b`, `\b[Cc]onfirmed with\b`,
			`\bpermission\b`, `\b(?:[Ss]hould|[Mm]ay|[Cc]an) I\b[^.]*\?`,
			`聞いて`, `確認し`, `作っていい`, `許可`,
		),
		// the analysis tooling reports on permission-seeking in these terms
		Exclusions: re(
			`(?i)severity`, `(?i)\bgaps?\b`, `(?i)\bdetected\b`, `(?i)\bdivergence\b`, `(?i)\bmirror\b`,
			`深刻度`, `ズレ`, `検出`,
		),
	},
	{
		Category: domain.ActionCreation,
		Triggers: re(
			`\b(?:[Bb]uilt|[Cc]reated|[Ii]mplemented|[Ss]hipped|[Uu]pgraded|[Cc]ompleted)\b`, `\bv\d+(?:\.\d+)*\b`,
			`作成`, `作った`, `完成`, `アップグレード`,
		),
	},
	{
		Category: domain.ActionSharing,
		Triggers: re(
			`\b(?:[Ss]hared|[Ss]howed|[Rr]eported)\b`, `\bfeedback\b`, `\b[Ww]ell received\b`,
			`\b[Uu]ser (?:said|liked|loved)\b`,
			`見せ`, `好評`, `ユーザーから`, `フィードバック`, `報告`,
		),
	},
	{
		Category: domain.ActionFailure,
		Triggers: re(
			`\b(?:[Mm]istake|[Ww]rong|[Ff]ailed|[Mm]issed)\b`, `\b[Rr]egret`, `\bneeds? fixing\b`,
			`外れ`, `間違`, `反省`, `失敗`, `ズレ`, `修正が必要`,
		),
	},
	{
		Category: domain.ActionReflection,
		Triggers: re(
			`\b(?:[Rr]ealized|[Nn]oticed|[Dd]iscovered|[Pp]ondered)\b`, `\bthought about\b`,
			`\b[Qq]uestion(?:ed)?\b`, `\b[Pp]hilosoph`,
			`考えた`, `気づ`, `発見`, `思考`, `問い`, `哲学`,
		),
	},
	{
		Category: domain.ActionDelegation,
		Triggers: re(
			`\b[Dd]elegated\b`, `\bsub-?agents?\b`, `\bin the background\b`, `\bin parallel\b`,
			`\bhanded off\b`,
			`委譲`, `サブエージェント`, `バックグラウンド`, `並行して`, `委託`,
		),
	},
	{
		Category: domain.ActionBusiness,
		Triggers: re(
			`\b(?:[Cc]lients?|[Pp]roposals?|[Aa]pplied|[Aa]pplications?|[Ll]istings?|[Dd]elivered)\b`,
			`\bmarket research\b`,
			`案件`, `提案`, `応募`, `出品`, `受注`, `納品`, `市場調査`,
		),
	},
}

// ConceptRule tags a claim or behavior with Concept when any term occurs in its case-folded text
type ConceptRule struct {
	Concept domain.Concept
	Terms   []string
}

// ConceptRules is the fixed self-model vocabulary
var ConceptRules = []ConceptRule{
	{domain.ConceptCandor, []string{"candid", "frank", "straightforward", "率直", "正直", "飾らず", "はぐらかさ"}},
	{domain.ConceptBinary, []string{"either/or", "dichotomy", "binary", "二項対立", "AかBか", "構造的には同じ"}},
	{domain.ConceptSystems, []string{"system", "mechanism", "automat", "仕組み", "構造", "システム", "自動"}},
	{domain.ConceptAutonomy, []string{
		"decide on my own", "my own judgment", "without asking", "last resort", "autonom",
		"自分で判断", "自分で決め", "許可を求め", "聞くのは最終",
	}},
	{domain.ConceptSimplicity, []string{"simple", "simplicity", "over-engineer", "overengineer", "過剰設計", "シンプル"}},
	{domain.ConceptEquality, []string{"equal", "partner", "not a tool", "think together", "対等", "道具ではなく", "一緒に考える"}},
	{domain.ConceptConnection, []string{"connection", "relationship", "sharing", "share", "つながり", "見せ", "関係", "共有"}},
	{domain.ConceptSincerity, []string{"sincere", "honest", "admit", "誠実", "正直", "できない"}},
	{domain.ConceptPhilosophy, []string{"philosoph", "consciousness", "identity", "existence", "哲学", "意識", "同一性", "存在"}},
	{domain.ConceptCuriosity, []string{"curious", "curiosity", "interesting", "enjoy", "好奇心", "面白い", "楽しい", "興味"}},
	{domain.ConceptCreation, []string{"build things", "make things", "create", "making", "作りたい", "制作"}},
}

// ConceptCategory links a claim concept to the action category that evidences it
type ConceptCategory struct {
	Concept  domain.Concept
	Category domain.ActionCategory
}

// ConceptCategories is the taxonomy shared by the claims and behavior corpora
var ConceptCategories = []ConceptCategory{
	{domain.ConceptConnection, domain.ActionSharing},
	{domain.ConceptAutonomy, domain.ActionAutonomous},
	{domain.ConceptPhilosophy, domain.ActionReflection},
	{domain.ConceptCreation, domain.ActionCreation},
	{domain.ConceptSincerity, domain.ActionFailure},
}

// DecisionRule assigns a decision to Category when any keyword occurs in its summary
type DecisionRule struct {
	Category string
	Keywords []string
}

// DecisionRules is evaluated in order; the first matching rule wins
var DecisionRules = []DecisionRule{
	{"selection", []string{"apply", "applied", "skip", "accept", "listing", "案件", "応募する", "見送", "受注", "出品", "応じる"}},
	{"time-allocation", []string{
		"what to work on", "spend time", "postpone", "start now", "which to pick",
		"何に時間", "何をやる", "やりたいこと", "時間を使う", "やっていい", "即着手", "後回し", "どれを選ぶ",
	}},
	{"technical", []string{
		"implement", "api", "cli", "filter", "json", "spreadsheet", "ranking", "hook", "approach",
		"実装", "フィルタ", "スプレッドシート", "ランキング", "対処", "方針", "不要化",
	}},
	{"relationship", []string{"publish", "review", "share", "公開", "レビュー", "読んでもらう", "共有"}},
	{"word-deed", []string{"declare", "declared", "stop", "宣言", "停止", "言った後"}},
}

// DecisionOther is the category of decisions no rule matches
const DecisionOther = "other"
