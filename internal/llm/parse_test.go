package llm

import "testing"

type verdict struct {
	IsVerified bool   `json:"is_verified"`
	Excerpt    string `json:"excerpt"`
}

func TestParseJSON_PlainObject(t *testing.T) {
	var v verdict
	err := ParseJSON(`{"is_verified": true, "excerpt": "thirty days"}`, &v)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !v.IsVerified || v.Excerpt != "thirty days" {
		t.Errorf("Wrong parse result: %+v", v)
	}
}

func TestParseJSON_MarkdownFence(t *testing.T) {
	var v verdict
	reply := "```json\n{\"is_verified\": true, \"excerpt\": \"x\"}\n```"
	if err := ParseJSON(reply, &v); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !v.IsVerified {
		t.Errorf("Expected verified after fence stripping")
	}
}

func TestParseJSON_ProseAroundJSON(t *testing.T) {
	var v verdict
	reply := `Sure! Here is the verdict you asked for:
{"is_verified": false, "excerpt": ""}
Let me know if you need anything else.`
	if err := ParseJSON(reply, &v); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v.IsVerified {
		t.Errorf("Expected not verified")
	}
}

func TestParseJSON_NestedBracesInStrings(t *testing.T) {
	var v map[string]string
	reply := `{"excerpt": "the clause reads: {see appendix} and more"} trailing prose`
	if err := ParseJSON(reply, &v); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if v["excerpt"] != "the clause reads: {see appendix} and more" {
		t.Errorf("Brace inside string mishandled: %q", v["excerpt"])
	}
}

func TestParseJSON_Array(t *testing.T) {
	var items []int
	if err := ParseJSON("here you go: [1, 2, 3] done", &items); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 items, got %d", len(items))
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	var v verdict
	cases := []string{
		"",
		"I cannot answer that.",
		`{"is_verified": tr`,
		"```json\n\n```",
	}
	for _, reply := range cases {
		if err := ParseJSON(reply, &v); err == nil {
			t.Errorf("Expected error for %q", reply)
		}
	}
}
