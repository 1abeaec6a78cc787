package markup

import (
	"fmt"
	"regexp"
	"strings"
)

// godotDocsPattern recognizes intra-project documentation URLs; anything
// else is a plain external link.
var godotDocsPattern = regexp.MustCompile(`^\$DOCS_URL/(.*)\.html(#.*)?$`)

// engineClasses are types documented by the engine itself rather than by
// this project; references to them link out to the upstream manual.
var engineClasses = map[string]bool{
	"AABB": true, "Array": true, "Basis": true, "bool": true,
	"Callable": true, "Color": true, "Dictionary": true, "float": true,
	"int": true, "NodePath": true, "Object": true, "PackedByteArray": true,
	"PackedColorArray": true, "PackedFloat32Array": true, "PackedFloat64Array": true,
	"PackedInt32Array": true, "PackedInt64Array": true, "PackedStringArray": true,
	"PackedVector2Array": true, "PackedVector3Array": true, "Plane": true,
	"Projection": true, "Quaternion": true, "Rect2": true, "Rect2i": true,
	"RID": true, "Signal": true, "String": true, "StringName": true,
	"Transform2D": true, "Transform3D": true, "Variant": true,
	"Vector2": true, "Vector2i": true, "Vector3": true, "Vector3i": true,
	"Vector4": true, "Vector4i": true,
	"Node": true, "Node2D": true, "Node3D": true, "CanvasItem": true,
	"Control": true, "Resource": true, "RefCounted": true, "PackedScene": true,
	"Texture2D": true, "AudioStream": true, "Font": true, "StyleBox": true,
	"CharacterBody2D": true, "CharacterBody3D": true, "Area2D": true,
	"Area3D": true, "RigidBody2D": true, "RigidBody3D": true,
	"AnimationPlayer": true, "Camera2D": true, "Camera3D": true,
	"CollisionShape2D": true, "CollisionShape3D": true, "Sprite2D": true,
	"Sprite3D": true, "Timer": true, "Label": true, "Button": true,
}

// MakeType renders a type name as an RST crosslink. Project classes link
// to their generated page, engine classes link to the upstream manual,
// typed arrays link both the array and the element type.
func (t *Transpiler) MakeType(typeName string, ctx Context) string {
	if strings.Contains(typeName, "*") { // pointer, don't link
		return "``" + typeName + "``"
	}

	linkType := typeName
	isArray := false
	if strings.HasSuffix(linkType, "[]") {
		linkType = linkType[:len(linkType)-2]
		isArray = true
	}

	if t.table.Has(linkType) {
		rst := fmt.Sprintf(":ref:`%s<class_%s>`", linkType, linkType)
		if isArray {
			rst = ":ref:`Array<class_Array>`\\[" + rst + "\\]"
		}
		return rst
	}
	if engineClasses[linkType] {
		rst := fmt.Sprintf("`%s <https://docs.godotengine.org/en/stable/classes/class_%s.html>`_",
			linkType, strings.ToLower(linkType))
		if isArray {
			rst = "`Array <https://docs.godotengine.org/en/stable/classes/class_array.html>`_\\[" + rst + "\\]"
		}
		return rst
	}

	t.diags.Errorf("%s.xml: Unresolved type \"%s\".", ctx.Class, linkType)
	rst := "``" + linkType + "``"
	if isArray {
		rst = ":ref:`Array<class_Array>`\\[" + rst + "\\]"
	}
	return rst
}

// MakeEnum renders an enum reference. Unqualified names default to the
// context class and fall back to @GlobalScope; Variant enums live in
// @GlobalScope but keep their dotted name.
func (t *Transpiler) MakeEnum(target string, isBitfield bool, ctx Context) string {
	var className, enumName string
	if i := strings.IndexByte(target, '.'); i >= 0 {
		className = target[:i]
		enumName = target[i+1:]
		if className == "Variant" {
			className = "@GlobalScope"
			enumName = "Variant." + enumName
		}
	} else {
		className = ctx.Class
		enumName = target
		if c, ok := t.table.Class(className); ok {
			if _, ok := c.Enums[enumName]; !ok {
				className = "@GlobalScope"
			}
		}
	}

	if c, ok := t.table.Class(className); ok {
		if enum, ok := c.Enums[enumName]; ok {
			if isBitfield {
				if !enum.IsBitfield {
					t.diags.Errorf("%s.xml: Enum \"%s\" is not bitfield.", ctx.Class, target)
				}
				return fmt.Sprintf("|bitfield|\\[:ref:`%s<enum_%s_%s>`\\]", enumName, className, enumName)
			}
			return fmt.Sprintf(":ref:`%s<enum_%s_%s>`", enumName, className, enumName)
		}
	}

	// Vector3.Axis is expected to stay unresolved, don't report it.
	if className+"."+enumName != "Vector3.Axis" {
		t.diags.Errorf("%s.xml: Unresolved enum \"%s\".", ctx.Class, target)
	}
	return target
}

// MakeLink renders a [url] target. Recognized documentation-site URLs
// become intra-project section links, everything else a plain external
// link, in both cases honoring an optional title.
func MakeLink(url, title string) string {
	m := godotDocsPattern.FindStringSubmatch(url)
	if m != nil {
		page, fragment := m[1], m[2]
		if fragment != "" {
			// Direct link to a section, with a page reference fallback.
			if title != "" {
				return fmt.Sprintf("`%s <../%s.html%s>`__", title, page, fragment)
			}
			return fmt.Sprintf("`%s <../%s.html%s>`__ in :doc:`../%s`", fragment, page, fragment, page)
		}
		if title != "" {
			return fmt.Sprintf(":doc:`%s <../%s>`", title, page)
		}
		return fmt.Sprintf(":doc:`../%s`", page)
	}

	if title != "" {
		return fmt.Sprintf("`%s <%s>`__", title, url)
	}
	return fmt.Sprintf("`%s <%s>`__", url, url)
}

// operatorNames maps operator symbols to anchor-safe names.
var operatorNames = map[string]string{
	"!=": "neq", "==": "eq",
	"<": "lt", "<=": "lte", ">": "gt", ">=": "gte",
	"+": "sum", "-": "dif", "*": "mul", "/": "div", "%": "mod", "**": "pow",
	"unary+": "unplus", "unary-": "unminus",
	"<<": "bwsl", ">>": "bwsr", "&": "bwand", "|": "bwor", "^": "bwxor", "~": "bwnot",
	"[]": "idx",
}

// SanitizeOperatorName converts an operator declaration like
// "operator ==" into the name used in anchors.
func (t *Transpiler) SanitizeOperatorName(dirtyName string, ctx Context) string {
	clean := strings.ReplaceAll(dirtyName, "operator ", "")
	if name, ok := operatorNames[clean]; ok {
		return name
	}
	t.diags.Errorf("Unsupported operator type \"%s\", please add the missing rule.", dirtyName)
	return "xxx"
}
