package model

// Modifiers is a JVM access_flags bit set.
type Modifiers uint32

const (
	AccPublic       Modifiers = 0x0001
	AccPrivate      Modifiers = 0x0002
	AccProtected    Modifiers = 0x0004
	AccStatic       Modifiers = 0x0008
	AccFinal        Modifiers = 0x0010
	AccSynchronized Modifiers = 0x0020
	AccBridge       Modifiers = 0x0040
	AccVarargs      Modifiers = 0x0080
	AccNative       Modifiers = 0x0100
	AccInterface    Modifiers = 0x0200
	AccAbstract     Modifiers = 0x0400
	AccSynthetic    Modifiers = 0x1000
	AccAnnotation   Modifiers = 0x2000
	AccEnum         Modifiers = 0x4000
	// AccConstructor only appears in dex class data.
	AccConstructor Modifiers = 0x10000
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

func (m Modifiers) IsPublic() bool    { return m.Has(AccPublic) }
func (m Modifiers) IsStatic() bool    { return m.Has(AccStatic) }
func (m Modifiers) IsFinal() bool     { return m.Has(AccFinal) }
func (m Modifiers) IsInterface() bool { return m.Has(AccInterface) }

// IsSynthetic reports compiler-generated members (synthetic or bridge).
func (m Modifiers) IsSynthetic() bool { return m.Has(AccSynthetic) || m.Has(AccBridge) }
