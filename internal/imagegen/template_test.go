package imagegen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagestudio/internal/domain"
	"imagestudio/internal/prompt"
)

func templateParams(t *testing.T, svc *Service, tt prompt.TemplateType) prompt.Params {
	t.Helper()
	tpl, err := svc.Catalog().Template(tt)
	require.NoError(t, err)
	params := prompt.Params{}
	for _, s := range tpl.Slots {
		if !s.Required {
			continue
		}
		if s.Kind == prompt.SlotSteps {
			params[s.Name] = []string{"first " + s.Name}
			continue
		}
		params[s.Name] = "value of " + s.Name
	}
	return params
}

func TestEveryTemplateHasPrimitive(t *testing.T) {
	for _, tt := range prompt.AllTemplateTypes() {
		_, ok := templatePrimitives[tt]
		assert.True(t, ok, "no primitive for %s", tt)
	}
	assert.Len(t, templatePrimitives, len(prompt.AllTemplateTypes()))
}

func TestGenerateWithTemplateDispatch(t *testing.T) {
	img := ImageFromBytes(testPNG())
	for _, tt := range prompt.AllTemplateTypes() {
		tt := tt
		t.Run(string(tt), func(t *testing.T) {
			provider := &stubProvider{}
			svc, _ := newTestService(t, provider)

			res := svc.GenerateWithTemplate(context.Background(), TemplateRequest{
				Type:   tt,
				Params: templateParams(t, svc, tt),
				Images: []ImageSource{img, img},
			})
			require.True(t, res.Success, res.Error)
			assert.Equal(t, string(tt), res.Metadata.Template)
			require.Len(t, provider.reqs, 1)
			req := provider.reqs[0]

			switch templatePrimitives[tt] {
			case primitiveTextOnly:
				assert.Empty(t, req.Images)
				assert.Equal(t, domain.TypeTextToImage, res.Metadata.Type)
			case primitiveSingleImage:
				assert.Len(t, req.Images, 1)
				assert.False(t, req.ImagesFirst)
				assert.Equal(t, domain.TypeImageEditing, res.Metadata.Type)
			case primitiveMultiImage:
				assert.Len(t, req.Images, 2)
				assert.True(t, req.ImagesFirst)
				assert.Equal(t, domain.TypeMultiImageComposition, res.Metadata.Type)
			}
		})
	}
}

func TestGenerateWithTemplateMissingParam(t *testing.T) {
	provider := &stubProvider{}
	svc, _ := newTestService(t, provider)

	res := svc.GenerateWithTemplate(context.Background(), TemplateRequest{
		Type:   prompt.LogoDesign,
		Params: prompt.Params{"company_name": "Acme"},
	})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrTemplate)
	assert.Equal(t, 0, provider.Calls())
}

func TestGenerateWithTemplateUnknownType(t *testing.T) {
	provider := &stubProvider{}
	svc, _ := newTestService(t, provider)

	res := svc.GenerateWithTemplate(context.Background(), TemplateRequest{Type: "poster"})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrTemplate)
	assert.Equal(t, 0, provider.Calls())
}

func TestGenerateWithTemplateSingleImageNeedsImage(t *testing.T) {
	provider := &stubProvider{}
	svc, _ := newTestService(t, provider)

	res := svc.GenerateWithTemplate(context.Background(), TemplateRequest{
		Type:   prompt.StyleTransfer,
		Params: templateParams(t, svc, prompt.StyleTransfer),
	})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrValidation)
	assert.Equal(t, 0, provider.Calls())
}
