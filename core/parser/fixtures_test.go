package parser

// Markup fixtures shaped like the provider responses.

const apiBibleGenesis1 = `<div class="chapter ch1" data-usfm="GEN 1">
<p class="s1">The Creation</p>
<p class="p"><span data-number="1" data-sid="GEN 1:1" class="v">1</span>In the beginning God created the heaven and the earth. <span data-number="2" data-sid="GEN 1:2" class="v">2</span>And the earth was without form, and void.<span class="f"><span class="fr">1:2 </span><span class="ft">Or empty</span></span></p>
<p class="r">(John 1:1-5; Hebrews 11:1-3)</p>
</div>`

const esvPsalm23 = `<div class="passage-text">
<h2 class="extra_text">Psalm 23</h2>
<h3 id="p19023001_01-1">The LORD Is My Shepherd</h3>
<h4 id="p19023001_01-1">A Psalm of David.</h4>
<p class="block-indent"><span class="begin-line-group"></span>
<span id="p19023001_01-1" class="line"><b class="chapter-num" id="v19023001-1">23:1&nbsp;</b>The LORD is my shepherd; I shall not want.</span><br />
<span id="p19023002_01-1" class="indent line"><b class="verse-num" id="v19023002-1">2&nbsp;</b>He makes me lie down in green pastures.</span><br />
<span id="p19023002_01-1" class="line">He leads me beside still waters.<sup class="footnote"><a class="fn" href="#f1-" id="f1">1</a></sup></span><br />
<span class="end-line-group"></span>
<span class="begin-line-group"></span>
<span id="p19023003_01-1" class="line"><b class="verse-num" id="v19023003-1">3&nbsp;</b>He restores my soul.</span><br />
<span class="end-line-group"></span>
</p>
<div class="footnotes extra_text"><h3>Footnotes</h3><p><span class="footnote"><a href="#f1">[1]</a></span> Hebrew <i>beside waters of rest</i></p></div>
<p class="extra_text">(<a href="http://www.esv.org">ESV</a>)</p>
</div>`

const nltPsalm23 = `<div class="chapter ch23" data-usfm="PSA 23">
<p class="d">A psalm of David.</p>
<p class="q1"><span data-number="1" data-sid="PSA 23:1" class="v">1</span>The LORD is my shepherd; I have all that I need.</p>
<p class="q1"><span data-number="2" data-sid="PSA 23:2" class="v">2</span>He lets me rest in green meadows;</p>
<p class="q2">he leads me beside peaceful streams.</p>
<p class="q1"><span data-number="3" data-sid="PSA 23:3" class="v">3</span>He renews my strength.</p>
<p class="b"></p>
<p class="q1"><span data-number="4" data-sid="PSA 23:4" class="v">4</span>Even when I walk through the darkest valley,</p>
</div>`

const bsbRomans16 = `<div class="chapter ch16" data-usfm="ROM 16">
<p class="p"><span data-number="5" data-sid="ROM 16:5" class="v">5</span>Greet also the church</p>
<p class="m">that meets at their house.</p>
<p class="p">Greet my beloved Epaenetus, <span data-number="6" data-sid="ROM 16:6" class="v">6</span>Greet Mary.</p>
<p class="p"><span data-number="25-27" data-sid="ROM 16:25-27" class="v">25-27</span>Now to Him be glory.</p>
</div>`
