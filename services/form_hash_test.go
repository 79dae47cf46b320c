package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseFormHTML = `
<form>
	<label for="name">Full name</label>
	<input type="text" name="name" id="name" required>
	<label for="email">Email</label>
	<input type="email" name="email" id="email" required>
	<button type="submit">Submit application</button>
</form>`

func TestComputeFormHashStable(t *testing.T) {
	first, err := ComputeFormHash(baseFormHTML)
	assert.NoError(t, err)
	second, err := ComputeFormHash(baseFormHTML)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestComputeFormHashIgnoresCosmeticChurn(t *testing.T) {
	base, err := ComputeFormHash(baseFormHTML)
	assert.NoError(t, err)

	// Same structure, different generated ids, class hashes and wrapper divs.
	rerendered := `
<div class="css-1x9kq">
<form id="form_882190347" data-reactid="r-194837261" class="sc-bdVaJa">
	<label for="name">Full name</label>
	<input type="text" name="name" id="name" class="css-9ze02" required>
	<label for="email">Email</label>
	<input type="email" name="email" id="email" style="width: 100%" required>
	<button type="submit" class="btn-7731">Submit application</button>
</form>
</div>`
	cosmetic, err := ComputeFormHash(rerendered)
	assert.NoError(t, err)
	assert.Equal(t, base, cosmetic)
}

func TestComputeFormHashChangesOnStructure(t *testing.T) {
	base, err := ComputeFormHash(baseFormHTML)
	assert.NoError(t, err)

	// Added field changes the hash.
	withPhone := baseFormHTML + `<input type="tel" name="phone">`
	added, err := ComputeFormHash(withPhone)
	assert.NoError(t, err)
	assert.NotEqual(t, base, added)

	// Retyping a field changes the hash.
	retyped, err := ComputeFormHash(`
<form>
	<label for="name">Full name</label>
	<input type="text" name="name" id="name" required>
	<label for="email">Email</label>
	<input type="text" name="email" id="email" required>
	<button type="submit">Submit application</button>
</form>`)
	assert.NoError(t, err)
	assert.NotEqual(t, base, retyped)
}

func TestComputeFormHashChangesOnLabelText(t *testing.T) {
	base, err := ComputeFormHash(baseFormHTML)
	assert.NoError(t, err)

	relabeled, err := ComputeFormHash(`
<form>
	<label for="name">Legal name</label>
	<input type="text" name="name" id="name" required>
	<label for="email">Email</label>
	<input type="email" name="email" id="email" required>
	<button type="submit">Submit application</button>
</form>`)
	assert.NoError(t, err)
	assert.NotEqual(t, base, relabeled)
}

func TestLooksVolatile(t *testing.T) {
	assert.True(t, looksVolatile("field_1715812345"))
	assert.True(t, looksVolatile("9f8b2c1d-3a4e-45f6-b7c8-d9e0f1a2b3c4"))
	assert.False(t, looksVolatile("email"))
	assert.False(t, looksVolatile("urls[LinkedIn]"))
	assert.False(t, looksVolatile("job_application[first_name]"))
}
