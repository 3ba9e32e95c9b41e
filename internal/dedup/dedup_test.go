package dedup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMap_Upsert(t *testing.T) {
	m := NewOrderedMap()

	assert.False(t, m.Upsert("a", Item{Date: "1", Text: "first a"}))
	assert.False(t, m.Upsert("b", Item{Date: "2", Text: "first b"}))
	assert.True(t, m.Upsert("a", Item{Date: "3", Text: "second a"}))

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, []Item{
		{Date: "3", Text: "second a"},
		{Date: "2", Text: "first b"},
	}, m.Items())

	got, ok := m.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "[3] second a", got.String())

	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold topic before colon", "**Invoice for ACME**: waiting on payment", "InvoiceforACME"},
		{"em dash separator", "Invoice for ACME — still waiting", "InvoiceforACME"},
		{"arrow separator", "Invoice for ACME → waiting", "InvoiceforACME"},
		{"full-width colon", "請求書：支払い待ち", "請求書"},
		{"numbers with units", "3件の応募待ち", "の応募待ち"},
		{"earliest separator wins", "a → b: c", "a"},
		{"prefix length", "Renew the SSL certificate for the main domain before it expires", "RenewtheSSLcertificatefor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.in))
		})
	}
}

func TestKeysCollide(t *testing.T) {
	assert.True(t, KeysCollide("abc", "abc"))
	assert.True(t, KeysCollide("TODOwritedocs", "TODOwritedocsfortheparser"))
	assert.True(t, KeysCollide("TODOwritedocsfortheparser", "TODOwritedocs"))
	assert.False(t, KeysCollide("Fix", "Fixturecleanuppending"))
	assert.False(t, KeysCollide("Invoice", "Renewal"))
}

func TestClusterOf(t *testing.T) {
	name, ok := ClusterOf(Clusters, "application pending for Project X")
	require.True(t, ok)
	assert.Equal(t, "application-status", name)

	// status clusters come first
	name, ok = ClusterOf(Clusters, "application status for the listing pending")
	require.True(t, ok)
	assert.Equal(t, "application-status", name)

	name, ok = ClusterOf(Clusters, "QRコード案件の返信待ち")
	require.True(t, ok)
	assert.Equal(t, "qr-code", name)

	_, ok = ClusterOf(Clusters, "waiting on the plumber")
	assert.False(t, ok)
}

func TestOpenItems_ClusterCollapse(t *testing.T) {
	items := []Item{
		{Date: "2026-02-15", Text: "application pending for Project X"},
		{Date: "2026-02-16", Text: "waiting on the plumber"},
		{Date: "2026-02-18", Text: "application pending for Project X, now under review"},
	}

	got := OpenItems(Clusters, items)
	assert.Equal(t, []Item{
		{Date: "2026-02-18", Text: "application pending for Project X, now under review"},
		{Date: "2026-02-16", Text: "waiting on the plumber"},
	}, got)
}

func TestOpenItems_ClusterMonotonic(t *testing.T) {
	var items []Item
	for day := 1; day <= 6; day++ {
		date := fmt.Sprintf("2026-03-%02d", day)
		items = append(items, Item{Date: date, Text: fmt.Sprintf("inventory system still waiting on vendor (%d)", day)})
		items = append(items, Item{Date: date, Text: fmt.Sprintf("TODO unrelated chore %c", 'a'+day)})
	}

	got := OpenItems(Clusters, items)

	var inventory []Item
	for _, it := range got {
		if name, ok := ClusterOf(Clusters, it.Text); ok && name == "inventory" {
			inventory = append(inventory, it)
		}
	}
	require.Len(t, inventory, 1)
	assert.Equal(t, "2026-03-06", inventory[0].Date)
	// first representative keeps its first-occurrence position
	assert.Equal(t, inventory[0], got[0])
}

func TestOpenItems_Exclusions(t *testing.T) {
	items := []Item{
		{Date: "2026-02-15", Text: "~~waiting on review~~ → resolved"},
		{Date: "2026-02-15", Text: "<del>pending invoice</del>"},
		{Date: "2026-02-15", Text: "[x] TODO rotate keys"},
		{Date: "2026-02-15", Text: "pending migration completed"},
		{Date: "2026-02-15", Text: "waiting instead of pushing was correct"},
		{Date: "2026-02-15", Text: "pattern recurred: pending replies pile up"},
		{Date: "2026-02-15", Text: "shipped the parser"},
		{Date: "2026-02-15", Text: "TODO rotate keys"},
	}

	got := OpenItems(Clusters, items)
	assert.Equal(t, []Item{{Date: "2026-02-15", Text: "TODO rotate keys"}}, got)

	for _, it := range items[:4] {
		assert.True(t, IsResolved(it.Text), it.Text)
	}
	assert.True(t, IsObservation(items[4].Text))
	assert.True(t, IsObservation(items[5].Text))
}

func TestDedup_FuzzyKeys(t *testing.T) {
	t.Run("containment merges and keeps latest", func(t *testing.T) {
		got := Dedup(nil, []Item{
			{Date: "1", Text: "TODO write docs"},
			{Date: "2", Text: "TODO write docs for the parser"},
		})
		assert.Equal(t, []Item{{Date: "2", Text: "TODO write docs for the parser"}}, got)
	})

	t.Run("short keys only match exactly", func(t *testing.T) {
		got := Dedup(nil, []Item{
			{Date: "1", Text: "Fix: pending"},
			{Date: "2", Text: "Fixture cleanup pending"},
		})
		assert.Len(t, got, 2)
	})

	t.Run("shared prefix before separator over-merges", func(t *testing.T) {
		// accepted false positive: both keys reduce to "TODO"
		got := Dedup(nil, []Item{
			{Date: "1", Text: "TODO: fix login"},
			{Date: "2", Text: "TODO: renew domain"},
		})
		assert.Equal(t, []Item{{Date: "2", Text: "TODO: renew domain"}}, got)
	})

	t.Run("ambiguous match goes to most recent key", func(t *testing.T) {
		got := Dedup(nil, []Item{
			{Date: "1", Text: "Deploy backend pending"},
			{Date: "2", Text: "Deploy frontend pending"},
			{Date: "3", Text: "Deploy: pending approval"},
		})
		assert.Equal(t, []Item{
			{Date: "1", Text: "Deploy backend pending"},
			{Date: "3", Text: "Deploy: pending approval"},
		}, got)
	})

	t.Run("distinct topics stay apart", func(t *testing.T) {
		got := Dedup(nil, []Item{
			{Date: "1", Text: "Invoice for ACME: waiting"},
			{Date: "2", Text: "Renewal of hosting: waiting"},
		})
		assert.Len(t, got, 2)
	})
}

func TestKeyFacts(t *testing.T) {
	items := []Item{
		{Date: "1", Text: "**Finding**: cache was cold"},
		{Date: "2", Text: "**Finding**:  cache was cold"},
		{Date: "2", Text: "it turned out the API was rate limited"},
		{Date: "3", Text: "plain note"},
	}

	got := KeyFacts(items)
	assert.Equal(t, []Item{
		{Date: "1", Text: "**Finding**: cache was cold"},
		{Date: "2", Text: "it turned out the API was rate limited"},
	}, got)
}
