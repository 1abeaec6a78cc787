package scene

import (
	"regexp"
	"testing"

	"gddoc/internal/diag"
	"gddoc/internal/errors"
)

const playerScene = `[gd_scene load_steps=4 format=3 uid="uid://c3player"]

[ext_resource type="Script" path="res://player/player.gd" id="1_p"]
[ext_resource type="Texture2D" path="res://art/player.png" id="2_t"]

[sub_resource type="CircleShape2D" id="CircleShape2D_1"]
radius = 14.0

[node name="Player" type="CharacterBody2D"]
script = ExtResource("1_p")

[node name="Sprite" type="Sprite2D" parent="."]
texture = ExtResource("2_t")

[node name="Shape" type="CollisionShape2D" parent="."]
shape = SubResource("CircleShape2D_1")

[node name="Ray" type="RayCast2D" parent="Shape"]

[connection signal="hit" from="." to="Sprite" method="_on_hit"]
[connection signal="hit" from="Shape" to="Ghost" method="_on_hit"]
`

func parseOne(t *testing.T, source, path string) (*Graph, *diag.Reporter) {
	t.Helper()
	diags := diag.NewReporter(nil)
	out := NewParser(NewRegistry(), diags).Parse(source, path)
	if out.Status != Ready {
		t.Fatalf("Parse(%s) status = %v, want Ready (err: %v)", path, out.Status, out.Err)
	}
	return out.Graph, diags
}

func TestParseTree(t *testing.T) {
	g, _ := parseOne(t, playerScene, "player.tscn")

	wantPaths := []string{".", "Shape", "Shape/Ray", "Sprite"}
	got := g.Paths()
	if len(got) != len(wantPaths) {
		t.Fatalf("paths = %v, want %v", got, wantPaths)
	}
	for i, p := range wantPaths {
		if got[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, got[i], p)
		}
	}

	root := g.At(g.Root)
	if root.Name != "Player" || root.Type != "CharacterBody2D" {
		t.Errorf("root = %s (%s), want Player (CharacterBody2D)", root.Name, root.Type)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}

	shapeID, ok := g.ByPath("Shape")
	if !ok {
		t.Fatal("no node at path Shape")
	}
	if kids := g.At(shapeID).Children; len(kids) != 1 || g.At(kids[0]).Name != "Ray" {
		t.Errorf("Shape children = %v, want [Ray]", kids)
	}
}

func TestParseResources(t *testing.T) {
	g, _ := parseOne(t, playerScene, "player.tscn")

	root := g.At(g.Root)
	if root.Script == nil {
		t.Fatal("root script not attached")
	}
	if root.Script.Path != "player/player.gd" {
		t.Errorf("script path = %q, want %q", root.Script.Path, "player/player.gd")
	}

	spriteID, _ := g.ByPath("Sprite")
	sprite := g.At(spriteID)
	if len(sprite.Resources) != 1 || sprite.Resources[0].ID != "2_t" {
		t.Errorf("Sprite resources = %v, want ext resource 2_t", sprite.Resources)
	}
	if !sprite.Resources[0].External {
		t.Error("Sprite texture should be external")
	}

	shapeID, _ := g.ByPath("Shape")
	shape := g.At(shapeID)
	if len(shape.Resources) != 1 || shape.Resources[0].ID != "CircleShape2D_1" {
		t.Errorf("Shape resources = %v, want sub resource CircleShape2D_1", shape.Resources)
	}
	if shape.Resources[0].External {
		t.Error("Shape collision shape should be internal")
	}
}

func TestParseConnections(t *testing.T) {
	g, diags := parseOne(t, playerScene, "player.tscn")

	conn, ok := g.Connections["hit"]
	if !ok {
		t.Fatal("no connection record for signal hit")
	}
	if len(conn.Emitters) != 2 {
		t.Errorf("emitters = %d, want 2", len(conn.Emitters))
	}
	if len(conn.Receivers) != 1 {
		t.Fatalf("receivers = %d, want 1", len(conn.Receivers))
	}
	r := conn.Receivers[0]
	if g.At(r.Node).Name != "Sprite" || r.Method != "_on_hit" {
		t.Errorf("receiver = (%s, %s), want (Sprite, _on_hit)", g.At(r.Node).Name, r.Method)
	}

	// The Ghost endpoint is dropped without a diagnostic, but counted.
	if n := diags.Errors(); n != 0 {
		t.Errorf("errors = %d, want 0", n)
	}
	if n := diags.DroppedEndpoints(); n != 1 {
		t.Errorf("dropped endpoints = %d, want 1", n)
	}
}

func TestParseNestedResourceRefs(t *testing.T) {
	src := `[gd_scene format=3]

[ext_resource type="Shader" path="res://fx/glow.gdshader" id="1_s"]

[sub_resource type="ShaderMaterial" id="Mat_1"]
shader = ExtResource("1_s")

[sub_resource type="CanvasItemMaterial" id="Mat_2"]
next_pass = SubResource("Mat_1")

[node name="Fx" type="Node2D"]
material = SubResource("Mat_2")
`
	g, _ := parseOne(t, src, "fx.tscn")

	mat1 := g.SubResources["Mat_1"]
	if len(mat1.Nested) != 1 || mat1.Nested[0].ID != "1_s" {
		t.Errorf("Mat_1 nested = %v, want [1_s]", mat1.Nested)
	}
	mat2 := g.SubResources["Mat_2"]
	if len(mat2.Nested) != 1 || mat2.Nested[0] != mat1 {
		t.Errorf("Mat_2 nested = %v, want [Mat_1]", mat2.Nested)
	}
}

func TestParseFatal(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   errors.ErrorCode
	}{
		{
			name:   "unsupported format",
			source: "[gd_scene format=2]\n\n[node name=\"A\" type=\"Node\"]\n",
			code:   errors.UnsupportedSceneFormat,
		},
		{
			name:   "no header",
			source: "[node name=\"A\" type=\"Node\"]\n",
			code:   errors.UnsupportedSceneFormat,
		},
		{
			name:   "missing root",
			source: "[gd_scene format=3]\n\n[ext_resource type=\"Script\" path=\"res://a.gd\" id=\"1\"]\n",
			code:   errors.MissingRootNode,
		},
		{
			name:   "unknown parent path",
			source: "[gd_scene format=3]\n\n[node name=\"A\" type=\"Node\"]\n\n[node name=\"B\" type=\"Node\" parent=\"Missing\"]\n",
			code:   errors.UnresolvedReference,
		},
		{
			name:   "unknown nested resource id",
			source: "[gd_scene format=3]\n\n[sub_resource type=\"Material\" id=\"M\"]\nshader = ExtResource(\"nope\")\n\n[node name=\"A\" type=\"Node\"]\n",
			code:   errors.UnresolvedResource,
		},
		{
			name:   "unknown script resource id",
			source: "[gd_scene format=3]\n\n[node name=\"A\" type=\"Node\"]\nscript = ExtResource(\"nope\")\n",
			code:   errors.UnresolvedResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := diag.NewReporter(nil)
			out := NewParser(NewRegistry(), diags).Parse(tt.source, "bad.tscn")
			if out.Status != Failed {
				t.Fatalf("status = %v, want Failed", out.Status)
			}
			if code := errors.CodeOf(out.Err); code != tt.code {
				t.Errorf("code = %v, want %v", code, tt.code)
			}
			if diags.Errors() != 1 {
				t.Errorf("errors = %d, want 1", diags.Errors())
			}
		})
	}
}

func TestParseNotReady(t *testing.T) {
	src := `[gd_scene format=3]

[ext_resource type="PackedScene" path="res://hud/hud.tscn" id="1_h"]

[node name="Main" type="Node2D"]

[node name="Hud" parent="." instance=ExtResource("1_h")]
`
	diags := diag.NewReporter(nil)
	out := NewParser(NewRegistry(), diags).Parse(src, "main.tscn")
	if out.Status != NotReady {
		t.Fatalf("status = %v, want NotReady", out.Status)
	}
	if out.Missing != "hud/hud.tscn" {
		t.Errorf("missing = %q, want %q", out.Missing, "hud/hud.tscn")
	}
	if diags.Errors() != 0 {
		t.Errorf("errors = %d, want 0 (not-ready is not an error)", diags.Errors())
	}
}

const hudScene = `[gd_scene format=3]

[ext_resource type="Script" path="res://hud/hud.gd" id="1_h"]

[node name="Hud" type="CanvasLayer"]
script = ExtResource("1_h")

[node name="Score" type="Label" parent="."]

[node name="Timer" type="Timer" parent="Score"]
`

func registerHud(t *testing.T, reg *Registry) {
	t.Helper()
	diags := diag.NewReporter(nil)
	out := NewParser(reg, diags).Parse(hudScene, "hud/hud.tscn")
	if out.Status != Ready {
		t.Fatalf("hud parse status = %v, want Ready", out.Status)
	}
	reg.Register("hud/hud.tscn", out.Graph)
}

func TestParseInstancing(t *testing.T) {
	src := `[gd_scene format=3]

[ext_resource type="PackedScene" path="res://hud/hud.tscn" id="1_h"]

[node name="Main" type="Node2D"]

[node name="Hud" parent="." instance=ExtResource("1_h")]
`
	reg := NewRegistry()
	registerHud(t, reg)

	diags := diag.NewReporter(nil)
	out := NewParser(reg, diags).Parse(src, "main.tscn")
	if out.Status != Ready {
		t.Fatalf("status = %v, want Ready (err: %v)", out.Status, out.Err)
	}
	g := out.Graph

	wantPaths := []string{".", "Hud", "Hud/Score", "Hud/Score/Timer"}
	got := g.Paths()
	if len(got) != len(wantPaths) {
		t.Fatalf("paths = %v, want %v", got, wantPaths)
	}
	for i, p := range wantPaths {
		if got[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, got[i], p)
		}
	}

	hudID, _ := g.ByPath("Hud")
	hud := g.At(hudID)
	if hud.Type != "CanvasLayer" {
		t.Errorf("mount type = %q, want CanvasLayer (from instanced root)", hud.Type)
	}
	if hud.Script == nil || hud.Script.Path != "hud/hud.gd" {
		t.Errorf("mount script = %v, want hud/hud.gd", hud.Script)
	}
	if hud.Instance == nil || hud.Instance.Path != "hud/hud.tscn" {
		t.Errorf("mount instance = %v, want hud/hud.tscn", hud.Instance)
	}

	// The graft is a copy: mutating the clone must not touch the
	// registered source scene.
	scoreID, _ := g.ByPath("Hud/Score")
	g.At(scoreID).Type = "RichTextLabel"
	src2, _ := reg.Lookup("hud/hud.tscn")
	srcScoreID, _ := src2.ByPath("Score")
	if src2.At(srcScoreID).Type != "Label" {
		t.Error("mutating a grafted node leaked into the source scene")
	}
}

func TestParseOverrideByInstance(t *testing.T) {
	src := `[gd_scene format=3]

[ext_resource type="PackedScene" path="res://hud/hud.tscn" id="1_h"]

[node name="A" type="Node2D"]

[node name="A" instance=ExtResource("1_h")]
`
	reg := NewRegistry()
	registerHud(t, reg)

	diags := diag.NewReporter(nil)
	out := NewParser(reg, diags).Parse(src, "a.tscn")
	if out.Status != Ready {
		t.Fatalf("status = %v, want Ready (err: %v)", out.Status, out.Err)
	}
	g := out.Graph

	// One record at the root path, carrying the grafted scene's content.
	if g.Len() != 3 {
		t.Fatalf("node count = %d, want 3 (root + Score + Score/Timer)", g.Len())
	}
	root := g.At(g.Root)
	if root.Name != "A" {
		t.Errorf("root name = %q, want A", root.Name)
	}
	if root.Type != "CanvasLayer" {
		t.Errorf("root type = %q, want CanvasLayer (instanced root wins)", root.Type)
	}
	if root.Script == nil || root.Script.Path != "hud/hud.gd" {
		t.Errorf("root script = %v, want hud/hud.gd", root.Script)
	}
	if _, ok := g.ByPath("Score"); !ok {
		t.Error("grafted child Score missing")
	}
}

func TestParseIgnoredNodes(t *testing.T) {
	src := `[gd_scene format=3]

[node name="Main" type="Node2D"]

[node name="DebugOverlay" type="CanvasLayer" parent="."]

[node name="Fps" type="Label" parent="DebugOverlay"]

[node name="Player" type="CharacterBody2D" parent="."]

[connection signal="hit" from="Player" to="DebugOverlay" method="_on_hit"]
`
	diags := diag.NewReporter(nil)
	p := NewParser(NewRegistry(), diags)
	p.Ignore = regexp.MustCompile(`Debug.*`)

	out := p.Parse(src, "main.tscn")
	if out.Status != Ready {
		t.Fatalf("status = %v, want Ready (err: %v)", out.Status, out.Err)
	}
	g := out.Graph

	if g.Len() != 2 {
		t.Errorf("node count = %d, want 2 (Main, Player)", g.Len())
	}
	if _, ok := g.ByPath("DebugOverlay"); ok {
		t.Error("ignored node still present")
	}
	if _, ok := g.ByPath("DebugOverlay/Fps"); ok {
		t.Error("child of ignored node still present")
	}

	// The emitter survives, the filtered receiver is dropped and counted.
	conn := g.Connections["hit"]
	if len(conn.Emitters) != 1 || len(conn.Receivers) != 0 {
		t.Errorf("connection = %d emitters / %d receivers, want 1/0",
			len(conn.Emitters), len(conn.Receivers))
	}
	if diags.DroppedEndpoints() != 1 {
		t.Errorf("dropped endpoints = %d, want 1", diags.DroppedEndpoints())
	}
}

func TestParseSectionLine(t *testing.T) {
	tests := []struct {
		line string
		name string
		want map[string]string
	}{
		{
			line: `[gd_scene load_steps=4 format=3 uid="uid://c3x"]`,
			name: "gd_scene",
			want: map[string]string{"load_steps": "4", "format": "3", "uid": "uid://c3x"},
		},
		{
			line: `[node name="Hi \"there\"" type="Label"]`,
			name: "node",
			want: map[string]string{"name": `Hi \"there\"`, "type": "Label"},
		},
		{
			line: `[node name="Hud" parent="." instance=ExtResource("1_h")]`,
			name: "node",
			want: map[string]string{"name": "Hud", "parent": ".", "instance": `ExtResource("1_h")`},
		},
		{
			line: "[editable]",
			name: "editable",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		name, attrs := parseSectionLine(tt.line)
		if name != tt.name {
			t.Errorf("parseSectionLine(%s) name = %q, want %q", tt.line, name, tt.name)
		}
		if len(attrs) != len(tt.want) {
			t.Errorf("parseSectionLine(%s) attrs = %v, want %v", tt.line, attrs, tt.want)
			continue
		}
		for k, v := range tt.want {
			if attrs[k] != v {
				t.Errorf("parseSectionLine(%s) attrs[%s] = %q, want %q", tt.line, k, attrs[k], v)
			}
		}
	}
}
