package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
)

func TestSelection(t *testing.T) {
	assets := sampleAssets()
	for _, a := range assets {
		a.TaskID = 7
	}

	t.Run("toggle and resolve keep input order", func(t *testing.T) {
		sel := model.NewSelection()
		gt.B(t, sel.Toggle(assets[3].Key())).True()
		gt.B(t, sel.Toggle(assets[0].Key())).True()
		gt.N(t, sel.Len()).Equal(2)

		gt.A(t, codes(sel.Resolve(assets))).Equal([]string{"A100", "XA1Z"})

		gt.B(t, sel.Toggle(assets[0].Key())).False()
		gt.B(t, sel.Has(assets[0].Key())).False()
		gt.N(t, sel.Len()).Equal(1)
	})

	t.Run("keys are sorted and unknown keys are ignored", func(t *testing.T) {
		sel := model.NewSelection()
		sel.Set(model.AssetKey{TaskID: 7, Code: "ZZZ"}, true)
		sel.Set(assets[1].Key(), true)

		keys := sel.Keys()
		gt.A(t, keys).Length(2)
		gt.S(t, keys[0].Code).Equal("B200")
		gt.A(t, codes(sel.Resolve(assets))).Equal([]string{"B200"})
	})

	t.Run("select all then clear", func(t *testing.T) {
		sel := model.NewSelection()
		sel.SelectAll(assets)
		gt.N(t, sel.Len()).Equal(len(assets))

		sel.Clear()
		gt.N(t, sel.Len()).Equal(0)
		gt.A(t, sel.Resolve(assets)).Length(0)
	})

	t.Run("same code in another task is a different key", func(t *testing.T) {
		sel := model.NewSelection()
		sel.Set(model.AssetKey{TaskID: 8, Code: "A100"}, true)
		gt.B(t, sel.Has(assets[0].Key())).False()
	})
}
