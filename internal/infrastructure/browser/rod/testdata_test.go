package rod

const (
	basicPage = `<!DOCTYPE html>
<html>
<head><title>Example Domain</title></head>
<body>
	<h1>Example Domain</h1>
</body>
</html>`

	clickPage = `<!DOCTYPE html>
<html>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	shopPage = `<!DOCTYPE html>
<html>
<head><title>Shop</title></head>
<body>
	<h1>Products</h1>
	<ul>
		<li class="product">Blue Mug <span class="price">$12</span></li>
		<li class="product">Red Mug <span class="price">$14</span></li>
	</ul>
	<div id="promo" style="display:none">Secret discount</div>
	<button id="buy" aria-label="Buy now">Buy</button>
</body>
</html>`

	widePage = `<!DOCTYPE html>
<html>
<body style="width: 2000px; height: 1500px;">
	<h1>Large Page</h1>
</body>
</html>`
)
