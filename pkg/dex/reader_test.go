package dex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranleduy2000/javaide-sub031/pkg/dex/dextest"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

const (
	pub    = uint32(model.AccPublic)
	static = uint32(model.AccStatic)
)

func sample() []byte {
	return dextest.Bytes(
		dextest.Class{
			Name:       "android/app/Activity",
			Super:      "java/lang/Object",
			Interfaces: []string{"android/view/Window$Callback"},
			Access:     pub,
			Fields: []dextest.Member{
				{Access: pub | static, Name: "RESULT_OK", Desc: "I"},
				{Access: uint32(model.AccPrivate), Name: "mTitle", Desc: "Ljava/lang/CharSequence;"},
			},
			Methods: []dextest.Member{
				{Access: pub | uint32(model.AccConstructor), Name: "<init>", Desc: "()V"},
				{Access: static | uint32(model.AccConstructor), Name: "<clinit>", Desc: "()V"},
				{Access: pub, Name: "setTitle", Desc: "(Ljava/lang/CharSequence;)V"},
				{Access: pub, Name: "findViewById", Desc: "(I)Landroid/view/View;"},
				{Access: pub | uint32(model.AccSynthetic), Name: "access$000", Desc: "()V"},
			},
		},
		dextest.Class{
			Name:   "android/view/View",
			Super:  "java/lang/Object",
			Access: pub,
			Methods: []dextest.Member{
				{Access: pub, Name: "getId", Desc: "()I"},
			},
		},
	)
}

func TestOpenAndRead(t *testing.T) {
	f, err := Open(sample())
	require.NoError(t, err)
	require.Equal(t, 2, f.NumClasses())

	i, ok := f.Lookup("android.app.Activity")
	require.True(t, ok)
	cls, err := f.ReadClass(i)
	require.NoError(t, err)

	assert.Equal(t, "Activity", cls.SimpleName)
	assert.Equal(t, "java.lang.Object", cls.Superclass)
	assert.Equal(t, []string{"android.view.Window$Callback"}, cls.Interfaces)

	require.Len(t, cls.Fields, 1)
	assert.Equal(t, "RESULT_OK", cls.Fields[0].FieldName)
	assert.Equal(t, "int", cls.Fields[0].Type)

	require.Len(t, cls.Constructors, 1)
	assert.False(t, cls.Constructors[0].Flags.Has(model.AccConstructor))

	require.Len(t, cls.Methods, 2)
	assert.Equal(t, "setTitle", cls.Methods[0].MethodName)
	assert.Equal(t, []string{"java.lang.CharSequence"}, cls.Methods[0].Params)
	assert.Equal(t, "android.view.View", cls.Methods[1].ReturnType)

	_, ok = f.Lookup("android.app.Missing")
	assert.False(t, ok)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open([]byte("dex\n035"))
	assert.True(t, errors.Is(err, ErrTruncated))

	bad := sample()
	bad[0] = 'x'
	_, err = Open(bad)
	assert.True(t, errors.Is(err, ErrBadMagic))

	good := sample()
	_, err = Open(good[:0x90])
	assert.Error(t, err)
}

func TestReadClassOutOfRange(t *testing.T) {
	f, err := Open(sample())
	require.NoError(t, err)
	_, err = f.ReadClass(5)
	assert.Error(t, err)
}
