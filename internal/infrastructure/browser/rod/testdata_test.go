package rod

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	SignupHTML = `<!DOCTYPE html>
<html>
<head><title>Create account</title></head>
<body>
	<form id="signup" onsubmit="return false">
		<input id="email" type="email" name="email" placeholder="Email" />
		<input id="password" type="password" name="password" />
		<label><input id="marketing" type="checkbox" name="marketing" /> Send me news</label>
		<button id="create" type="submit">Create Account</button>
		<button id="google" type="button" disabled>Continue with Google</button>
		<div id="hidden-error" class="error" style="display:none">Hidden.</div>
	</form>
	<div id="result"></div>
	<script>
		document.getElementById('create').addEventListener('click', function() {
			document.getElementById('result').textContent = 'submitted:' + document.getElementById('email').value;
		});
	</script>
</body>
</html>`

	CoveredHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="target" style="position:absolute;top:40px;left:40px;width:120px;height:40px">Target</button>
	<div id="overlay" style="position:fixed;top:0;left:0;width:100%;height:100%;background:rgba(0,0,0,.4)"></div>
	<div id="result"></div>
	<script>
		document.getElementById('target').addEventListener('click', function() {
			document.getElementById('result').textContent = 'clicked';
		});
		document.addEventListener('keydown', function(e) {
			if (e.key === 'Escape') {
				document.getElementById('overlay').style.display = 'none';
			}
		});
	</script>
</body>
</html>`

	ConsoleHTML = `<!DOCTYPE html>
<html>
<body>
	<p>console</p>
	<script>
		setTimeout(function() { console.error('signup failed', 42); }, 50);
	</script>
</body>
</html>`
)
